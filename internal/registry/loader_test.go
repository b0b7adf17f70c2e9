package registry

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"benchopt/pkg/types"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDir_AllFormats(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "resnet50.yaml", "family: torchvision\ndevice: cuda\ntest: eval\nbatch_size: 32\ncapabilities: [fp16_half, channels_last]\n")
	write(t, dir, "bert.json", `{"id":"hf_bert","family":"huggingface","test":"train","max_length":512,"capabilities":["staged_train","amp"]}`)
	write(t, dir, "dlrm.toml", "device=\"cpu\"\ntest=\"train\"\njit=true\n")
	write(t, dir, "README.md", "not a manifest")
	if err := os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	reg, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("models=%+v", reg.List())
	}
	ids := []string{}
	for _, m := range reg.List() {
		ids = append(ids, m.ID)
	}
	if ids[0] != "dlrm" || ids[1] != "hf_bert" || ids[2] != "resnet50" {
		t.Fatalf("ids not sorted or defaulted: %v", ids)
	}

	rn, ok := reg.Find("resnet50")
	if !ok || rn.Family != types.FamilyTorchVision || rn.BatchSize != 32 || len(rn.Capabilities) != 2 {
		t.Fatalf("resnet50=%+v", rn)
	}
	if rn.Name != "resnet50" || filepath.Base(rn.Path) != "resnet50.yaml" {
		t.Fatalf("name/path defaults: %+v", rn)
	}
	bert, _ := reg.Find("hf_bert")
	if bert.Device != types.DeviceCUDA || bert.MaxLength != 512 || bert.Test != types.TestTrain {
		t.Fatalf("hf_bert=%+v", bert)
	}
	dlrm, _ := reg.Find("dlrm")
	if !dlrm.JIT || dlrm.Device != types.DeviceCPU || dlrm.BatchSize != 1 {
		t.Fatalf("dlrm=%+v", dlrm)
	}
	if _, ok := reg.Find("missing"); ok {
		t.Fatalf("unexpected hit")
	}
}

func TestLoadDir_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad_device.yaml": "device: tpu\n",
		"bad_test.yaml":   "test: bench\n",
		"bad_cap.yaml":    "capabilities: [warp_drive]\n",
		"bad_prec.yaml":   "default_eval_cuda_precision: bf16\n",
		"bad_family.yaml": "family: keras\n",
		"broken.yaml":     "device: cuda\n: nope\n",
		"broken.json":     `{"device":`,
	}
	for name, content := range cases {
		dir := t.TempDir()
		write(t, dir, name, content)
		if _, err := LoadDir(dir); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNew_DuplicateID(t *testing.T) {
	if _, err := New(types.Model{ID: "a"}, types.Model{ID: "a"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadDir_ExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir on this platform: %v", err)
	}
	hTmp, err := os.MkdirTemp(home, "benchopt-registry-*")
	if err != nil {
		t.Skipf("cannot create temp under home: %v", err)
	}
	defer os.RemoveAll(hTmp)
	write(t, hTmp, "x.yaml", "test: eval\n")
	tildePath := "~/" + filepath.Base(hTmp)
	if runtime.GOOS == "windows" {
		tildePath = filepath.Join("~", filepath.Base(hTmp))
	}
	reg, err := LoadDir(tildePath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := reg.Find("x"); !ok || reg.Len() != 1 {
		t.Fatalf("unexpected models: %+v", reg.List())
	}
}

func TestLoadDir_Missing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
