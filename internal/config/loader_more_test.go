package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_FieldTypeMismatches(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml default_args scalar", "cfg.yaml", "default_args: --precision fp16\n"},
		{"toml max_body_bytes string", "cfg.toml", "max_body_bytes = \"1MiB\"\n"},
		{"json cors origins object", "cfg.json", `{"cors_allowed_origins":{"origin":"*"}}`},
		{"yaml watch_models not bool", "cfg.yml", "watch_models: sometimes\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := writeTempFile(t, t.TempDir(), c.file, c.content)
			if _, err := Load(p); err == nil {
				t.Fatalf("expected error for %s", c.content)
			}
		})
	}
}

func TestLoad_UnsupportedExtensionNamesIt(t *testing.T) {
	p := writeTempFile(t, t.TempDir(), "benchopt.ini", "addr = :8080\n")
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), ".ini") {
		t.Fatalf("err=%v", err)
	}
}

func TestLoad_ExtensionIsCaseInsensitive(t *testing.T) {
	p := writeTempFile(t, t.TempDir(), "benchopt.YAML", "watch_models: true\ndefault_args: [--channels-last]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.WatchModels || len(cfg.DefaultArgs) != 1 || cfg.DefaultArgs[0] != "--channels-last" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeTempFile(t, home, "benchopt.toml", "models_dir = \"~/models\"\nmax_body_bytes = 4096\n")
	cfg, err := Load(filepath.Join("~", "benchopt.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelsDir != "~/models" || cfg.MaxBodyBytes != 4096 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}
