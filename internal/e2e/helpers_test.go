package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"

	"benchopt/internal/httpapi"
	"benchopt/internal/pipeline"
	"benchopt/internal/registry"
)

// writeManifests creates a temporary models directory from name -> content.
func writeManifests(t *testing.T, manifests map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for n, content := range manifests {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write manifest %s: %v", p, err)
		}
	}
	return dir
}

func defaultManifests() map[string]string {
	return map[string]string{
		"resnet50.yaml": "family: torchvision\ndevice: cuda\ntest: eval\nbatch_size: 32\ncapabilities: [fp16_half, channels_last]\n",
		"hf_bert.yaml":  "family: huggingface\ndevice: cuda\ntest: train\nmax_length: 512\ncapabilities: [staged_train, optimizer_step]\n",
		"dlrm.json":     `{"device":"cpu","test":"train"}`,
	}
}

func newServerForDir(t *testing.T, modelsDir string, defaultArgs ...string) *httptest.Server {
	t.Helper()
	reg, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("load models: %v", err)
	}
	svc := pipeline.NewService(reg, defaultArgs, zerolog.Nop())
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return srv
}

// repoRoot resolves the module root from this file's location.
func repoRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/internal/e2e/helpers_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
