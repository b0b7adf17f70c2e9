// Package backend applies resolved options to a model: precision and memory
// layout first, then at most one registered backend, or else fuser, graph
// capture and the TensorRT export paths.
package backend

import (
	"github.com/rs/zerolog"

	"benchopt/internal/compiler"
	"benchopt/internal/dynamo"
	"benchopt/internal/events"
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// ExportRequest is what an ahead-of-time exporter needs to rebuild a module.
type ExportRequest struct {
	BatchSize     int
	Precision     types.Precision
	FP16          bool
	Module        model.Module
	ExampleInputs []any
	// HuggingFace models are exported with dynamic sequence length up to
	// HFMaxLength.
	HF          bool
	HFMaxLength int
}

// Exporter converts a module ahead of time (fx2trt, torch-tensorrt).
type Exporter interface {
	Export(req ExportRequest) (model.Module, error)
}

// Scripter compiles a callable with the scripting compiler.
type Scripter interface {
	Script(fn model.Func) (model.Func, error)
}

// GraphCapturer records a callable into a replayable device graph.
type GraphCapturer interface {
	Capture(fn model.Func) (model.Func, error)
}

// FlopCounter wraps a callable so its flops are measured on every call.
type FlopCounter interface {
	Count(fn model.Func) model.Func
}

// ScopeFactory builds the scoped guards the decorator and applier attach.
type ScopeFactory interface {
	Autocast() model.Scope
	Fuser(f types.Fuser) model.Scope
}

// Toolchain bundles the external compilers and exporters.
type Toolchain struct {
	FX2TRT   Exporter
	TorchTRT Exporter
	Script   Scripter
	Graphs   GraphCapturer
	Flops    FlopCounter
	Scopes   ScopeFactory
	Dynamo   dynamo.Compiler
}

// Env is everything an applier may touch besides the model.
type Env struct {
	State  *compiler.State
	Tools  Toolchain
	Events events.Publisher
	Log    zerolog.Logger
}

func (e Env) publish(ev events.Event) {
	if e.Events != nil {
		e.Events.Publish(ev)
	}
}

func (e Env) driver() *dynamo.Driver {
	return &dynamo.Driver{Compiler: e.Tools.Dynamo, State: e.State, Events: e.Events, Log: e.Log}
}
