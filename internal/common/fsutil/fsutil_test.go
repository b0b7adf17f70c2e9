package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	return home
}

func TestExpandHome(t *testing.T) {
	home := setHome(t)
	cases := map[string]string{
		"/tmp":       "/tmp",
		"":           "",
		"~":          home,
		"~/models":   filepath.Join(home, "models"),
		"~/a/b.yaml": filepath.Join(home, "a", "b.yaml"),
	}
	for in, want := range cases {
		got, err := ExpandHome(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListByExt(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.yaml", "a.JSON", "c.toml", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "d.yaml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := ListByExt(dir, ".yaml", ".json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || filepath.Base(got[0]) != "a.JSON" || filepath.Base(got[1]) != "b.yaml" {
		t.Fatalf("got %v", got)
	}
	if !filepath.IsAbs(got[0]) {
		t.Fatalf("expected absolute paths, got %q", got[0])
	}
	if _, err := ListByExt(filepath.Join(dir, "missing"), ".yaml"); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
