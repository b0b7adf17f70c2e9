package model

import (
	"fmt"

	"benchopt/pkg/types"
)

// Func is one executable entry point of a benchmark model.
type Func func() error

// Slot names a rebindable entry point on a model.
type Slot string

const (
	SlotForward          Slot = "forward"
	SlotBackward         Slot = "backward"
	SlotOptimizerStep    Slot = "optimizer.step"
	SlotCfgOptimizerStep Slot = "cfg.optimizer.step"
	SlotTrain            Slot = "train"
	SlotEval             Slot = "eval"
)

// Module is an opaque handle to the network a model executes.
type Module any

// Impl is the external benchmark model implementation. Callables returns the
// entry points it provides; a slot that is absent is not supported.
type Impl interface {
	Callables() map[Slot]Func
}

// Optional enablers. A model must implement the one matching each capability
// it declares.
type (
	FP16Enabler interface {
		EnableFP16Half() error
	}
	AMPEnabler interface {
		EnableAMP() error
	}
	ChannelsLastEnabler interface {
		EnableChannelsLast() error
	}
	// ModuleIO exposes the underlying module for export backends.
	ModuleIO interface {
		Module() (Module, []any, error)
		SetModule(Module) error
	}
)

// Model is the handle the resolver and appliers work on. It is built once per
// run and owned by that run.
type Model struct {
	types.Model

	impl      Impl
	caps      Capability
	base      map[Slot]Func
	overrides map[Slot]Func
	scopes    map[types.Stage][]Scope
	precision types.Precision
}

// New validates desc against impl and returns a handle. Every capability desc
// declares must be backed by impl.
func New(desc types.Model, impl Impl) (*Model, error) {
	if impl == nil {
		return nil, fmt.Errorf("model %s: nil implementation", desc.ID)
	}
	switch desc.Device {
	case types.DeviceCPU, types.DeviceCUDA:
	default:
		return nil, fmt.Errorf("model %s: unknown device %q", desc.ID, desc.Device)
	}
	switch desc.Test {
	case types.TestEval, types.TestTrain:
	default:
		return nil, fmt.Errorf("model %s: unknown test %q", desc.ID, desc.Test)
	}
	caps, err := ParseCapabilities(desc.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", desc.ID, err)
	}
	base := make(map[Slot]Func)
	for slot, fn := range impl.Callables() {
		if fn != nil {
			base[slot] = fn
		}
	}
	if caps.Has(CapStagedTrain) {
		caps |= CapOptimizerStep
	}
	m := &Model{
		Model:     desc,
		impl:      impl,
		caps:      caps,
		base:      base,
		overrides: make(map[Slot]Func),
		scopes:    make(map[types.Stage][]Scope),
		precision: types.PrecisionFP32,
	}
	if err := m.checkBacked(); err != nil {
		return nil, fmt.Errorf("model %s: %w", desc.ID, err)
	}
	return m, nil
}

func (m *Model) checkBacked() error {
	need := func(c Capability, ok bool) error {
		if m.caps.Has(c) && !ok {
			return fmt.Errorf("declares %s but the implementation does not provide it", c)
		}
		return nil
	}
	_, fp16 := m.impl.(FP16Enabler)
	_, amp := m.impl.(AMPEnabler)
	_, cl := m.impl.(ChannelsLastEnabler)
	_, mio := m.impl.(ModuleIO)
	checks := []error{
		need(CapFP16Half, fp16),
		need(CapAMP, amp),
		need(CapChannelsLast, cl),
		need(CapModuleIO, mio),
		need(CapStagedTrain, m.hasBase(SlotForward) && m.hasBase(SlotBackward) && m.hasBase(SlotOptimizerStep)),
		need(CapOptimizerStep, m.hasBase(SlotOptimizerStep)),
		need(CapCfgOptimizerStep, m.hasBase(SlotCfgOptimizerStep)),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if m.Test == types.TestEval && !m.hasBase(SlotEval) {
		return fmt.Errorf("eval test requires an eval entry point")
	}
	if m.Test == types.TestTrain && !m.hasBase(SlotTrain) && !m.caps.Has(CapStagedTrain) {
		return fmt.Errorf("train test requires a train entry point or staged train interfaces")
	}
	return nil
}

func (m *Model) hasBase(slot Slot) bool {
	_, ok := m.base[slot]
	return ok
}

// Caps returns the declared capability set.
func (m *Model) Caps() Capability { return m.caps }

// Has reports whether the model declares c.
func (m *Model) Has(c Capability) bool { return m.caps.Has(c) }

// EntrySlot is the slot a backend rebinds: forward for staged train tests,
// train for fused train tests, eval otherwise.
func (m *Model) EntrySlot() Slot {
	if m.Test == types.TestTrain {
		if m.caps.Has(CapStagedTrain) {
			return SlotForward
		}
		return SlotTrain
	}
	return SlotEval
}

// Callable returns the current callable for slot, honouring any override.
func (m *Model) Callable(slot Slot) (Func, bool) {
	if fn, ok := m.overrides[slot]; ok {
		return fn, true
	}
	fn, ok := m.base[slot]
	return fn, ok
}

// Wrap replaces the callable at slot with w applied to the current one.
func (m *Model) Wrap(slot Slot, w func(Func) Func) error {
	cur, ok := m.Callable(slot)
	if !ok {
		return fmt.Errorf("model %s has no %s entry point", m.ID, slot)
	}
	next := w(cur)
	if next == nil {
		return fmt.Errorf("wrapping %s produced a nil callable", slot)
	}
	m.overrides[slot] = next
	return nil
}

// Wrapped reports whether slot currently runs through an override.
func (m *Model) Wrapped(slot Slot) bool {
	_, ok := m.overrides[slot]
	return ok
}

// AddScope attaches s to every invocation of stage.
func (m *Model) AddScope(s Scope, stage types.Stage) {
	m.scopes[stage] = append(m.scopes[stage], s)
}

// Scopes returns the number of scopes attached to stage.
func (m *Model) Scopes(stage types.Stage) int { return len(m.scopes[stage]) }

// Pristine reports whether nothing has been rebound or attached yet.
func (m *Model) Pristine() bool {
	if len(m.overrides) > 0 {
		return false
	}
	for _, s := range m.scopes {
		if len(s) > 0 {
			return false
		}
	}
	return true
}

// SetPrecision records the decoration precision for later appliers.
func (m *Model) SetPrecision(p types.Precision) { m.precision = p }

// Precision returns the recorded decoration precision (fp32 until set).
func (m *Model) Precision() types.Precision { return m.precision }

func (m *Model) EnableFP16Half() error {
	e, ok := m.impl.(FP16Enabler)
	if !ok || !m.caps.Has(CapFP16Half) {
		return fmt.Errorf("model %s does not implement enable_fp16_half", m.ID)
	}
	return e.EnableFP16Half()
}

func (m *Model) EnableAMP() error {
	e, ok := m.impl.(AMPEnabler)
	if !ok || !m.caps.Has(CapAMP) {
		return fmt.Errorf("model %s does not implement enable_amp", m.ID)
	}
	return e.EnableAMP()
}

func (m *Model) EnableChannelsLast() error {
	e, ok := m.impl.(ChannelsLastEnabler)
	if !ok || !m.caps.Has(CapChannelsLast) {
		return fmt.Errorf("model %s does not implement enable_channels_last", m.ID)
	}
	return e.EnableChannelsLast()
}

// Module returns the underlying module and its example inputs.
func (m *Model) Module() (Module, []any, error) {
	io, ok := m.impl.(ModuleIO)
	if !ok || !m.caps.Has(CapModuleIO) {
		return nil, nil, fmt.Errorf("model %s does not expose its module", m.ID)
	}
	return io.Module()
}

// SetModule swaps the underlying module, e.g. for an exported one.
func (m *Model) SetModule(mod Module) error {
	io, ok := m.impl.(ModuleIO)
	if !ok || !m.caps.Has(CapModuleIO) {
		return fmt.Errorf("model %s does not expose its module", m.ID)
	}
	return io.SetModule(mod)
}

// Invoke runs one iteration of the configured test. Staged train tests run
// forward, backward and optimizer.step, each inside its own stage scopes.
// Scopes attached to StageAll wrap the whole iteration.
func (m *Model) Invoke() error {
	return within(m.scopes[types.StageAll], func() error {
		if m.Test == types.TestTrain {
			if m.caps.Has(CapStagedTrain) {
				return m.invokeStaged()
			}
			return m.call(SlotTrain)
		}
		return m.call(SlotEval)
	})
}

func (m *Model) invokeStaged() error {
	steps := []struct {
		stage types.Stage
		slot  Slot
	}{
		{types.StageForward, SlotForward},
		{types.StageBackward, SlotBackward},
		{types.StageOptimizer, SlotOptimizerStep},
	}
	for _, s := range steps {
		slot := s.slot
		if err := within(m.scopes[s.stage], func() error { return m.call(slot) }); err != nil {
			return fmt.Errorf("%s: %w", slot, err)
		}
	}
	return nil
}

func (m *Model) call(slot Slot) error {
	fn, ok := m.Callable(slot)
	if !ok {
		return fmt.Errorf("model %s has no %s entry point", m.ID, slot)
	}
	return fn()
}
