package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"benchopt/internal/args"
	"benchopt/internal/backend"
	"benchopt/internal/compiler"
	"benchopt/internal/model"
	"benchopt/internal/registry"
	"benchopt/pkg/types"
)

func newRun(t *testing.T, desc types.Model) (*Runner, *model.Recorder) {
	t.Helper()
	rec := model.NewRecorder()
	m, _, err := model.NewSimModel(desc, rec)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	st := compiler.NewState()
	env := backend.Env{State: st, Tools: backend.NewSim(st, rec).Toolchain(), Log: zerolog.New(io.Discard)}
	return NewRunner(env, m), rec
}

func cudaEval() types.Model {
	return types.Model{ID: "resnet", Device: types.DeviceCUDA, Test: types.TestEval, BatchSize: 8}
}

func TestRunner_StepsOutOfOrder(t *testing.T) {
	r, _ := newRun(t, cudaEval())
	if err := r.Decorate(); !IsOutOfOrder(err) {
		t.Fatalf("err=%v want out of order", err)
	}
	if r.State() != Unconfigured {
		t.Fatalf("state=%s", r.State())
	}
	if err := r.Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := r.Parse(nil); !IsOutOfOrder(err) {
		t.Fatalf("second parse must fail, got %v", err)
	}
	if r.State() != Parsed {
		t.Fatalf("state=%s", r.State())
	}
}

func TestRunner_ValidationFailureLeavesModelUntouched(t *testing.T) {
	desc := cudaEval()
	desc.Device = types.DeviceCPU
	r, rec := newRun(t, desc)
	before := testutil.ToFloat64(validationFailuresTotal.WithLabelValues("--fuser"))
	configErrs := testutil.ToFloat64(runsTotal.WithLabelValues("config_error"))

	_, err := r.Run(context.Background(), []string{"--fuser", "fuser0"})
	if !args.IsUnsupported(err) || args.UnsupportedOption(err) != "--fuser" {
		t.Fatalf("err=%v want --fuser configuration error", err)
	}
	if r.State() != Parsed {
		t.Fatalf("state=%s want PARSED", r.State())
	}
	if !r.Model().Pristine() || len(rec.Events()) != 0 {
		t.Fatalf("model touched before validation passed")
	}
	if got := testutil.ToFloat64(validationFailuresTotal.WithLabelValues("--fuser")) - before; got != 1 {
		t.Fatalf("validation failures delta=%v", got)
	}
	if got := testutil.ToFloat64(runsTotal.WithLabelValues("config_error")) - configErrs; got != 1 {
		t.Fatalf("config_error runs delta=%v", got)
	}
}

func TestRunner_DynamoRun(t *testing.T) {
	desc := cudaEval()
	desc.Capabilities = []string{types.CapabilityFP16Half}
	r, rec := newRun(t, desc)
	warm := testutil.ToFloat64(warmupInvocationsTotal)
	resets := testutil.ToFloat64(compilerResetsTotal)
	ok := testutil.ToFloat64(runsTotal.WithLabelValues("ok"))

	rep, err := r.Run(context.Background(), []string{"--precision", "fp16", "--backend", "torchdynamo", "--torchdynamo", "inductor"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.State != "WARMED_UP" || rep.Invocations != 3 || rep.CompilerResets != 2 {
		t.Fatalf("report=%+v", rep)
	}
	if rec.Count(model.SlotEval) != 3 {
		t.Fatalf("eval calls=%d", rec.Count(model.SlotEval))
	}
	if got := testutil.ToFloat64(warmupInvocationsTotal) - warm; got != 3 {
		t.Fatalf("warmup metric delta=%v", got)
	}
	if got := testutil.ToFloat64(compilerResetsTotal) - resets; got != 2 {
		t.Fatalf("reset metric delta=%v", got)
	}
	if got := testutil.ToFloat64(runsTotal.WithLabelValues("ok")) - ok; got != 1 {
		t.Fatalf("ok runs delta=%v", got)
	}
}

func TestRunner_NonDynamoReachesWarmedUpWithoutInvocations(t *testing.T) {
	r, _ := newRun(t, cudaEval())
	rep, err := r.Run(context.Background(), []string{"--fuser", "fuser1"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.State != WarmedUp.String() || rep.Invocations != 0 || rep.CompilerResets != 0 {
		t.Fatalf("report=%+v", rep)
	}
}

func TestRunner_LeftoverArgsFail(t *testing.T) {
	r, _ := newRun(t, cudaEval())
	_, err := r.Run(context.Background(), []string{"--precision", "fp32", "--mystery", "7"})
	if !backend.IsUnconsumedArgs(err) {
		t.Fatalf("err=%v want unconsumed args", err)
	}
	if r.State() != Decorated {
		t.Fatalf("state=%s", r.State())
	}
}

func TestRunner_WarningReported(t *testing.T) {
	desc := cudaEval()
	desc.Test = types.TestTrain
	r, _ := newRun(t, desc)
	before := testutil.ToFloat64(featureUnavailableTotal.WithLabelValues("dynamo_disable_optimizer_step"))
	rep, err := r.Run(context.Background(), []string{"--backend", "torchdynamo", "--torchdynamo", "eager", "--dynamo_disable_optimizer_step", "True"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rep.Warnings) != 1 || !strings.Contains(rep.Warnings[0], "optimizer could not be found") {
		t.Fatalf("warnings=%v", rep.Warnings)
	}
	if got := testutil.ToFloat64(featureUnavailableTotal.WithLabelValues("dynamo_disable_optimizer_step")) - before; got != 1 {
		t.Fatalf("feature_unavailable delta=%v", got)
	}
}

func TestRunner_CanceledContext(t *testing.T) {
	r, _ := newRun(t, cudaEval())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, nil); err != context.Canceled {
		t.Fatalf("err=%v", err)
	}
	if r.State() != Unconfigured {
		t.Fatalf("state=%s", r.State())
	}
}

func newService(t *testing.T, defaults ...string) *Service {
	t.Helper()
	reg, err := registry.New(
		types.Model{ID: "resnet50", Family: types.FamilyTorchVision, Capabilities: []string{types.CapabilityFP16Half}},
		types.Model{ID: "hf_bert", Family: types.FamilyHuggingFace, Test: types.TestTrain, Capabilities: []string{types.CapabilityStagedTrain}},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return NewService(reg, defaults, zerolog.New(io.Discard))
}

func TestService_Resolve(t *testing.T) {
	svc := newService(t, "--precision", "fp16")
	if _, err := svc.Resolve(types.ResolveRequest{Model: "nope"}); !IsModelNotFound(err) {
		t.Fatalf("err=%v want not found", err)
	}
	res, err := svc.Resolve(types.ResolveRequest{Model: "resnet50", Args: []string{"--cudagraph", "--backend", "torchdynamo", "--torchdynamo", "inductor"}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Decoration.Precision != types.PrecisionFP16 {
		t.Fatalf("default args not applied: %+v", res.Decoration)
	}
	if res.Opt.CUDAGraph {
		t.Fatalf("torchvision models never get cudagraph")
	}
	if len(res.Remainder) != 2 || res.Remainder[0] != "--torchdynamo" || !res.CheckCorrectness {
		t.Fatalf("resolve=%+v", res)
	}
}

func TestService_Apply(t *testing.T) {
	svc := newService(t)
	rep, err := svc.Apply(context.Background(), types.ResolveRequest{Model: "hf_bert", Args: []string{"--precision", "amp", "--backend", "torchdynamo", "--torchdynamo", "eager"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if rep.Invocations != 3 || len(rep.Trace) == 0 {
		t.Fatalf("report=%+v", rep)
	}
	if _, err := uuid.Parse(rep.RunID); err != nil {
		t.Fatalf("run id %q: %v", rep.RunID, err)
	}
	again, _ := svc.Apply(context.Background(), types.ResolveRequest{Model: "hf_bert"})
	if again.RunID == rep.RunID {
		t.Fatalf("run ids must differ between runs")
	}
	if b := svc.Backends(); len(b.Backends) != 3 || len(b.DynamoBackends) == 0 {
		t.Fatalf("backends=%+v", b)
	}
	if len(svc.ListModels()) != 2 {
		t.Fatalf("models=%v", svc.ListModels())
	}
}

func TestWriteMetrics(t *testing.T) {
	runsTotal.WithLabelValues("ok").Add(0)
	p := filepath.Join(t.TempDir(), "benchopt.prom")
	if err := WriteMetrics(p); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "benchopt_pipeline_runs_total") {
		t.Fatalf("textfile missing pipeline counters:\n%s", b)
	}
}
