package backend

import (
	"fmt"

	"benchopt/internal/args"
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// ApplyDecoration applies memory layout and precision to m. d must already be
// validated against m.
func ApplyDecoration(env Env, m *model.Model, d args.DecorationArgs) error {
	if d.ChannelsLast {
		if err := m.EnableChannelsLast(); err != nil {
			return fmt.Errorf("channels_last: %w", err)
		}
	}
	switch d.Precision {
	case types.PrecisionFP16:
		if err := m.EnableFP16Half(); err != nil {
			return fmt.Errorf("fp16: %w", err)
		}
	case types.PrecisionTF32:
		if env.State == nil {
			return ErrInternal("tf32 requested without compiler state")
		}
		env.State.SetAllowTF32(true, true)
	case types.PrecisionAMP:
		if err := applyAMP(env, m); err != nil {
			return err
		}
	case types.PrecisionFP32:
	default:
		return ErrInternal("unknown precision %q", d.Precision)
	}
	m.SetPrecision(d.Precision)
	env.Log.Debug().Str("model", m.ID).Str("precision", string(d.Precision)).
		Bool("channels_last", d.ChannelsLast).Msg("decoration applied")
	return nil
}

// applyAMP lets the model handle amp itself when it can, otherwise runs eval
// under autocast, or only the forward stage of a staged train test.
func applyAMP(env Env, m *model.Model) error {
	if m.Has(model.CapAMP) {
		if err := m.EnableAMP(); err != nil {
			return fmt.Errorf("amp: %w", err)
		}
		return nil
	}
	if env.Tools.Scopes == nil {
		return ErrInternal("amp requested without a scope factory")
	}
	switch {
	case m.Test == types.TestEval:
		m.AddScope(env.Tools.Scopes.Autocast(), types.StageAll)
	case m.Test == types.TestTrain && args.IsStagedTrainTest(m):
		m.AddScope(env.Tools.Scopes.Autocast(), types.StageForward)
	default:
		return ErrInternal("amp on %s %s without enable_amp or staged train interfaces", m.Device, m.Test)
	}
	return nil
}
