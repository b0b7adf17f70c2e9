package backend

import (
	"fmt"
	"strings"

	"benchopt/internal/args"
	"benchopt/internal/events"
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// ApplyOpt applies the optimization options to m. With a backend selected,
// rest goes to that backend and nothing else is applied; otherwise rest must
// be empty.
func ApplyOpt(env Env, m *model.Model, o args.OptArgs, rest []string) error {
	switch o.Flops {
	case types.FlopsFVCore:
		if env.Tools.Flops == nil {
			return unavailable("fvcore flops")
		}
		if err := m.Wrap(m.EntrySlot(), env.Tools.Flops.Count); err != nil {
			return fmt.Errorf("flops: %w", err)
		}
	case types.FlopsDCGM:
		env.Log.Info().Str("model", m.ID).Msg("dcgm flops are collected by the harness")
	}

	if o.Backend != "" {
		t, ok := Lookup(o.Backend)
		if !ok {
			return args.ErrUnsupported("--backend", fmt.Sprintf("unknown backend %q, choose from %s", o.Backend, strings.Join(Names(), ", ")))
		}
		if err := t(env, m, rest); err != nil {
			return fmt.Errorf("backend %s: %w", o.Backend, err)
		}
		env.publish(events.Event{Name: events.BackendApplied, ModelID: m.ID, Fields: map[string]any{"backend": o.Backend}})
		return nil
	}
	if len(rest) > 0 {
		return ErrUnconsumedArgs("opt", rest)
	}

	if o.Fuser != "" {
		if env.Tools.Scopes == nil {
			return unavailable("fuser")
		}
		m.AddScope(env.Tools.Scopes.Fuser(o.Fuser), types.StageAll)
	}
	if o.CUDAGraph {
		if err := capture(env, m); err != nil {
			return err
		}
	}
	if o.FX2TRT {
		if m.JIT {
			return ErrIncompatible("fx2trt", "JIT")
		}
		if err := export(env, m, "fx2trt", env.Tools.FX2TRT, true); err != nil {
			return err
		}
	}
	if o.TorchTRT {
		if err := export(env, m, "torch_trt", env.Tools.TorchTRT, false); err != nil {
			return err
		}
	}
	return nil
}

// export swaps m's module for one built by exp. Anything but fp32 exports at
// half precision.
func export(env Env, m *model.Model, name string, exp Exporter, hfHints bool) error {
	if exp == nil {
		return unavailable(name)
	}
	mod, inputs, err := m.Module()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	req := ExportRequest{
		BatchSize:     m.BatchSize,
		Precision:     types.PrecisionFP32,
		FP16:          m.Precision() != types.PrecisionFP32,
		Module:        mod,
		ExampleInputs: inputs,
	}
	if req.FP16 {
		req.Precision = types.PrecisionFP16
	}
	if hfHints {
		req.HF = args.IsHF(m)
		req.HFMaxLength = args.HFMaxLength(m)
	}
	out, err := exp.Export(req)
	if err != nil {
		return fmt.Errorf("%s export: %w", name, err)
	}
	if err := m.SetModule(out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	env.Log.Debug().Str("model", m.ID).Str("exporter", name).Bool("fp16", req.FP16).Msg("module exported")
	return nil
}
