package backend

import (
	"fmt"
	"sync"

	"benchopt/internal/compiler"
	"benchopt/internal/dynamo"
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// Sim is an in-process toolchain. Every collaborator records what it was
// asked to do into one Recorder, usually the one the simulated model writes to.
type Sim struct {
	Rec      *model.Recorder
	FX2TRT   *SimExporter
	TorchTRT *SimExporter
	Dynamo   *dynamo.SimCompiler
}

// NewSim returns a recording toolchain bound to st.
func NewSim(st *compiler.State, rec *model.Recorder) *Sim {
	if rec == nil {
		rec = model.NewRecorder()
	}
	return &Sim{
		Rec:      rec,
		FX2TRT:   &SimExporter{Name: "fx2trt", rec: rec},
		TorchTRT: &SimExporter{Name: "torch_trt", rec: rec},
		Dynamo:   dynamo.NewSimCompiler(st, rec),
	}
}

// Toolchain returns s as the collaborator bundle appliers consume.
func (s *Sim) Toolchain() Toolchain {
	return Toolchain{
		FX2TRT:   s.FX2TRT,
		TorchTRT: s.TorchTRT,
		Script:   simScripter{s.Rec},
		Graphs:   simGraphs{s.Rec},
		Flops:    simFlops{s.Rec},
		Scopes:   simScopes{s.Rec},
		Dynamo:   s.Dynamo,
	}
}

// SimExporter records export requests and returns a tagged module.
type SimExporter struct {
	Name string
	// Fail, when set, is returned by Export.
	Fail error

	rec      *model.Recorder
	mu       sync.Mutex
	requests []ExportRequest
}

func (e *SimExporter) Export(req ExportRequest) (model.Module, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()
	if e.Fail != nil {
		return nil, e.Fail
	}
	e.rec.Event("export %s fp16=%t", e.Name, req.FP16)
	return fmt.Sprintf("%s(%v)", e.Name, req.Module), nil
}

// Requests returns the export requests seen so far.
func (e *SimExporter) Requests() []ExportRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ExportRequest, len(e.requests))
	copy(out, e.requests)
	return out
}

type simScripter struct{ rec *model.Recorder }

func (s simScripter) Script(fn model.Func) (model.Func, error) {
	s.rec.Event("torchscript script")
	return func() error {
		s.rec.Event("torchscript run")
		return fn()
	}, nil
}

type simGraphs struct{ rec *model.Recorder }

func (g simGraphs) Capture(fn model.Func) (model.Func, error) {
	g.rec.Event("cudagraph capture")
	return func() error {
		g.rec.Event("cudagraph replay")
		return fn()
	}, nil
}

type simFlops struct{ rec *model.Recorder }

func (f simFlops) Count(fn model.Func) model.Func {
	return func() error {
		f.rec.Event("flops count")
		return fn()
	}
}

type simScopes struct{ rec *model.Recorder }

func (s simScopes) Autocast() model.Scope {
	return func() (func(), error) { return s.rec.Enter("autocast"), nil }
}

func (s simScopes) Fuser(f types.Fuser) model.Scope {
	return func() (func(), error) { return s.rec.Enter("fuser:" + string(f)), nil }
}
