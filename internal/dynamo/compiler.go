// Package dynamo drives the dynamic-graph compiler backend: it selects a
// compiled wrapper for the requested backend and precision, configures the
// compiler, rebinds the model's entry point and warms it up so lazy
// compilation has finished before anything is timed.
package dynamo

import (
	"fmt"

	"benchopt/internal/args"
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// Kind is the compiler entry a Selection resolves to.
type Kind int

const (
	// KindNamed compiles with the backend registered under Selection.Backend.
	KindNamed Kind = iota
	KindFX2TRTFP16
	KindBlade
	KindIPEXFP32
)

// Selection is the compiled-callable wrapper chosen for a run.
type Selection struct {
	Kind    Kind
	Backend string
	// Blade options.
	FP16 bool
	TRT  bool
}

func (s Selection) String() string {
	switch s.Kind {
	case KindFX2TRTFP16:
		return "fx2trt_compiler_fp16"
	case KindBlade:
		return fmt.Sprintf("blade_optimize_dynamo(fp16=%t,trt=%t)", s.FP16, s.TRT)
	case KindIPEXFP32:
		return "ipex_fp32"
	default:
		return s.Backend
	}
}

// Select picks the wrapper for backend b at precision p.
func Select(b args.DynamoBackend, p types.Precision, trt bool) Selection {
	switch {
	case b.Family == args.FamilyFX2TRT && p == types.PrecisionFP16:
		return Selection{Kind: KindFX2TRTFP16, Backend: b.Name}
	case b.Family == args.FamilyBlade:
		return Selection{Kind: KindBlade, Backend: b.Name, FP16: p == types.PrecisionFP16, TRT: trt}
	case b.Family == args.FamilyIPEX && p == types.PrecisionFP32:
		return Selection{Kind: KindIPEXFP32, Backend: b.Name}
	default:
		return Selection{Kind: KindNamed, Backend: b.Name}
	}
}

// Compiler is the dynamic-graph compiler. Compilation is lazy: the wrapper
// returned by Optimize traces and compiles on its first call.
type Compiler interface {
	// Reset drops compiled code and guards.
	Reset()
	// Optimize returns the wrapper that compiles callables with sel.
	Optimize(sel Selection) (func(model.Func) model.Func, error)
	// Disable marks fn so the compiler never traces into it.
	Disable(fn model.Func) model.Func
}
