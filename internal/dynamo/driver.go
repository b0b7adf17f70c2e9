package dynamo

import (
	"fmt"

	"github.com/rs/zerolog"

	"benchopt/internal/args"
	"benchopt/internal/compiler"
	"benchopt/internal/events"
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// Rounds is the number of warm-up invocations after the compiled wrapper is
// installed.
const Rounds = 3

// Driver applies the dynamo backend to a model.
type Driver struct {
	Compiler Compiler
	State    *compiler.State
	Events   events.Publisher
	Log      zerolog.Logger
}

// Apply compiles m's entry point with the backend in a and runs the warm-up
// rounds. The compiler is reset before selection and again before warm-up;
// a failure before rebinding leaves the model untouched.
func (d *Driver) Apply(m *model.Model, a args.DynamoArgs, precision types.Precision) error {
	if d.Compiler == nil || d.State == nil {
		return fmt.Errorf("torchdynamo: compiler not configured")
	}
	d.State.SetLegacyNonFakeExampleInputs(true)
	d.reset(m)

	sel := Select(a.Backend, precision, a.TRT)
	wrap, err := d.Compiler.Optimize(sel)
	if err != nil {
		return fmt.Errorf("torchdynamo %s: %w", sel, err)
	}

	if a.Backend.Family == args.FamilyInductor {
		cfg := d.State.Inductor()
		cfg.CUDAGraphs = a.InductorCUDAGraph
		if a.TritonMM == "triton" {
			cfg.TritonMM = "triton"
		}
		cfg.FallbackRandom = a.InductorFallbackRandom
		d.State.SetInductor(cfg)
	}

	if a.DisableOptimizerStep {
		if err := d.disableOptimizerStep(m); err != nil {
			return err
		}
	}

	slot := m.EntrySlot()
	if err := m.Wrap(slot, wrap); err != nil {
		return fmt.Errorf("torchdynamo: %w", err)
	}
	d.Log.Debug().Str("model", m.ID).Str("slot", string(slot)).Str("compiler", sel.String()).Msg("dynamo wrapper installed")

	if a.OptimizeDDP {
		m.AddScope(func() (func(), error) {
			return d.State.OverrideOptimizeDDP(true), nil
		}, types.StageAll)
	}

	d.reset(m)
	for i := 1; i <= Rounds; i++ {
		if err := m.Invoke(); err != nil {
			return fmt.Errorf("torchdynamo warm-up round %d: %w", i, err)
		}
		d.publish(events.Event{Name: events.WarmupInvocation, ModelID: m.ID, Fields: map[string]any{"round": i}})
	}
	return nil
}

func (d *Driver) reset(m *model.Model) {
	d.State.Reset()
	d.Compiler.Reset()
	d.publish(events.Event{Name: events.CompilerReset, ModelID: m.ID})
}

// disableOptimizerStep marks the optimizer step so it is never traced. It
// looks under cfg.optimizer.step and optimizer.step; when neither exists the
// feature is skipped with a warning.
func (d *Driver) disableOptimizerStep(m *model.Model) error {
	found := false
	for _, p := range []struct {
		cap  model.Capability
		slot model.Slot
	}{
		{model.CapCfgOptimizerStep, model.SlotCfgOptimizerStep},
		{model.CapOptimizerStep, model.SlotOptimizerStep},
	} {
		if !m.Has(p.cap) {
			continue
		}
		if err := m.Wrap(p.slot, d.Compiler.Disable); err != nil {
			return fmt.Errorf("torchdynamo: %w", err)
		}
		found = true
	}
	if !found {
		d.publish(events.Event{
			Name:    events.FeatureUnavailable,
			ModelID: m.ID,
			Fields: map[string]any{
				"feature": "dynamo_disable_optimizer_step",
				"reason":  "--dynamo_disable_optimizer_step is set to True, but the optimizer could not be found on this model",
			},
		})
	}
	return nil
}

func (d *Driver) publish(e events.Event) {
	if d.Events != nil {
		d.Events.Publish(e)
	}
}
