package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"benchopt/internal/registry"
	"benchopt/pkg/types"
)

// The manifests shipped under configs/models must load and validate.
func TestE2E_ShippedManifestsLoad(t *testing.T) {
	reg, err := registry.LoadDir(filepath.Join(repoRoot(t), "configs", "models"))
	if err != nil {
		t.Fatalf("load shipped manifests: %v", err)
	}
	if reg.Len() == 0 {
		t.Fatalf("no shipped manifests")
	}
	for _, id := range []string{"resnet50", "hf_bert"} {
		if _, ok := reg.Find(id); !ok {
			t.Fatalf("missing shipped model %s", id)
		}
	}
}

func TestE2E_ResolveThenApply(t *testing.T) {
	srv := newServerForDir(t, writeManifests(t, defaultManifests()))

	resp, body := httpGet(t, srv.URL+"/models")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/models %d %s", resp.StatusCode, body)
	}
	var models types.ModelsResponse
	if err := json.Unmarshal(body, &models); err != nil || len(models.Models) != 3 {
		t.Fatalf("/models err=%v body=%s", err, body)
	}

	payload := []byte(`{"model":"resnet50","args":["--precision","fp16","--channels-last","--backend","torchdynamo","--torchdynamo","inductor"]}`)
	resp, body = httpPostJSON(t, srv.URL+"/resolve", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/resolve %d %s", resp.StatusCode, body)
	}
	var res types.ResolveResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("/resolve json: %v", err)
	}
	if res.Decoration.Precision != types.PrecisionFP16 || strings.Join(res.Remainder, " ") != "--torchdynamo inductor" {
		t.Fatalf("/resolve body=%+v", res)
	}

	resp, body = httpPostJSON(t, srv.URL+"/apply", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/apply %d %s", resp.StatusCode, body)
	}
	var rep types.ApplyResponse
	if err := json.Unmarshal(body, &rep); err != nil {
		t.Fatalf("/apply json: %v", err)
	}
	if rep.State != "WARMED_UP" || rep.Invocations != 3 || rep.CompilerResets != 2 {
		t.Fatalf("/apply body=%+v", rep)
	}
	trace := strings.Join(rep.Trace, "\n")
	for _, want := range []string{"enable channels_last", "enable fp16_half", "dynamo reset"} {
		if !strings.Contains(trace, want) {
			t.Fatalf("trace missing %q:\n%s", want, trace)
		}
	}
	if strings.Index(trace, "enable channels_last") > strings.Index(trace, "enable fp16_half") {
		t.Fatalf("channels_last must be enabled before precision:\n%s", trace)
	}
}

// Parallel applies each get their own compiler state; none sees another's
// resets or warm-up rounds.
func TestE2E_ConcurrentAppliesAreIndependent(t *testing.T) {
	srv := newServerForDir(t, writeManifests(t, defaultManifests()))
	backends := []string{"eager", "inductor", "aot_eager", "inductor"}

	var wg sync.WaitGroup
	errs := make(chan error, len(backends)*2)
	for i := 0; i < 2; i++ {
		for _, b := range backends {
			wg.Add(1)
			go func(model, backend string) {
				defer wg.Done()
				payload := fmt.Sprintf(`{"model":%q,"args":["--backend","torchdynamo","--torchdynamo",%q]}`, model, backend)
				resp, err := http.Post(srv.URL+"/apply", "application/json", strings.NewReader(payload))
				if err != nil {
					errs <- err
					return
				}
				body, _ := io.ReadAll(resp.Body)
				_ = resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					errs <- fmt.Errorf("%s/%s: %d %s", model, backend, resp.StatusCode, body)
					return
				}
				var rep types.ApplyResponse
				if err := json.Unmarshal(body, &rep); err != nil {
					errs <- err
					return
				}
				if rep.Invocations != 3 || rep.CompilerResets != 2 {
					errs <- fmt.Errorf("%s/%s: report=%+v", model, backend, rep)
				}
			}([]string{"resnet50", "hf_bert"}[i], b)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestE2E_ErrorStatuses(t *testing.T) {
	srv := newServerForDir(t, writeManifests(t, defaultManifests()))
	cases := []struct {
		name    string
		path    string
		payload string
		status  int
		option  string
	}{
		{"unknown model", "/apply", `{"model":"missing"}`, http.StatusNotFound, ""},
		{"precision on cpu", "/resolve", `{"model":"dlrm","args":["--precision","fp16"]}`, http.StatusUnprocessableEntity, "--precision"},
		{"fuser on cpu", "/apply", `{"model":"dlrm","args":["--fuser","fuser1"]}`, http.StatusUnprocessableEntity, "--fuser"},
		{"dynamo without backend", "/apply", `{"model":"resnet50","args":["--backend","torchdynamo"]}`, http.StatusUnprocessableEntity, "--torchdynamo"},
		{"leftover tokens", "/apply", `{"model":"resnet50","args":["--bogus"]}`, http.StatusBadRequest, ""},
		{"unknown precision", "/resolve", `{"model":"resnet50","args":["--precision","bf16"]}`, http.StatusBadRequest, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp, body := httpPostJSON(t, srv.URL+c.path, []byte(c.payload))
			if resp.StatusCode != c.status {
				t.Fatalf("status=%d want %d body=%s", resp.StatusCode, c.status, body)
			}
			var e types.ErrorResponse
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatalf("json: %v", err)
			}
			if e.Option != c.option || e.Code != c.status {
				t.Fatalf("error body=%+v", e)
			}
		})
	}
}

func TestE2E_DefaultArgsAndMetrics(t *testing.T) {
	srv := newServerForDir(t, writeManifests(t, defaultManifests()), "--precision", "fp16")
	resp, body := httpPostJSON(t, srv.URL+"/apply", []byte(`{"model":"resnet50"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/apply %d %s", resp.StatusCode, body)
	}
	var rep types.ApplyResponse
	if err := json.Unmarshal(body, &rep); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(strings.Join(rep.Trace, "\n"), "enable fp16_half") {
		t.Fatalf("default args not applied: %+v", rep)
	}

	resp, body = httpGet(t, srv.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics %d", resp.StatusCode)
	}
	for _, fam := range []string{
		"benchopt_pipeline_runs_total",
		"benchopt_pipeline_warmup_invocations_total",
		"benchopt_pipeline_compiler_resets_total",
		"benchopt_http_requests_total",
		"benchopt_pipeline_stage_duration_seconds",
	} {
		if !strings.Contains(string(body), fam) {
			t.Fatalf("/metrics missing %s", fam)
		}
	}
}
