package model

import (
	"fmt"
	"sort"
	"sync"

	"benchopt/pkg/types"
)

// Call is one recorded entry point invocation with the scopes active at the time.
type Call struct {
	Slot   Slot
	Active []string
}

// Recorder collects what happens to a simulated model: calls, enabler
// invocations, module swaps and scope enter/exit.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	events []string
	active map[string]int
}

func NewRecorder() *Recorder { return &Recorder{active: make(map[string]int)} }

// Event appends a free-form trace line.
func (r *Recorder) Event(format string, a ...any) {
	r.mu.Lock()
	r.events = append(r.events, fmt.Sprintf(format, a...))
	r.mu.Unlock()
}

// Enter marks name active and returns the func that marks it inactive again.
func (r *Recorder) Enter(name string) func() {
	r.mu.Lock()
	r.active[name]++
	r.events = append(r.events, "enter "+name)
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.active[name]--
		if r.active[name] <= 0 {
			delete(r.active, name)
		}
		r.events = append(r.events, "exit "+name)
		r.mu.Unlock()
	}
}

// Active reports whether name is currently entered.
func (r *Recorder) Active(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[name] > 0
}

func (r *Recorder) record(slot Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	active := make([]string, 0, len(r.active))
	for name := range r.active {
		active = append(active, name)
	}
	sort.Strings(active)
	r.calls = append(r.calls, Call{Slot: slot, Active: active})
	r.events = append(r.events, "call "+string(slot))
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times slot was called.
func (r *Recorder) Count(slot Slot) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Slot == slot {
			n++
		}
	}
	return n
}

// Events returns a copy of the trace.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// Sim is an in-process model implementation driven by a descriptor. It
// provides exactly the entry points the descriptor's capabilities call for and
// records everything into a Recorder.
type Sim struct {
	desc   types.Model
	caps   Capability
	rec    *Recorder
	module Module
	inputs []any
	fail   map[Slot]error
}

// NewSim builds a simulated implementation for desc.
func NewSim(desc types.Model, rec *Recorder) (*Sim, error) {
	caps, err := ParseCapabilities(desc.Capabilities)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = NewRecorder()
	}
	return &Sim{
		desc:   desc,
		caps:   caps,
		rec:    rec,
		module: "module:" + desc.ID,
		inputs: []any{fmt.Sprintf("inputs:%s:bs%d", desc.ID, desc.BatchSize)},
		fail:   make(map[Slot]error),
	}, nil
}

// NewSimModel is a shortcut for NewSim followed by New.
func NewSimModel(desc types.Model, rec *Recorder) (*Model, *Sim, error) {
	s, err := NewSim(desc, rec)
	if err != nil {
		return nil, nil, err
	}
	m, err := New(desc, s)
	if err != nil {
		return nil, nil, err
	}
	return m, s, nil
}

// Recorder returns the recorder the sim writes to.
func (s *Sim) Recorder() *Recorder { return s.rec }

// FailOn makes every call to slot return err.
func (s *Sim) FailOn(slot Slot, err error) { s.fail[slot] = err }

// CurrentModule returns the module currently installed.
func (s *Sim) CurrentModule() Module { return s.module }

func (s *Sim) Callables() map[Slot]Func {
	out := map[Slot]Func{
		SlotEval:  s.entry(SlotEval),
		SlotTrain: s.entry(SlotTrain),
	}
	if s.caps.Has(CapStagedTrain) {
		out[SlotForward] = s.entry(SlotForward)
		out[SlotBackward] = s.entry(SlotBackward)
		out[SlotOptimizerStep] = s.entry(SlotOptimizerStep)
	}
	if s.caps.Has(CapOptimizerStep) {
		out[SlotOptimizerStep] = s.entry(SlotOptimizerStep)
	}
	if s.caps.Has(CapCfgOptimizerStep) {
		out[SlotCfgOptimizerStep] = s.entry(SlotCfgOptimizerStep)
	}
	return out
}

func (s *Sim) entry(slot Slot) Func {
	return func() error {
		s.rec.record(slot)
		return s.fail[slot]
	}
}

func (s *Sim) EnableFP16Half() error {
	s.rec.Event("enable fp16_half")
	return nil
}

func (s *Sim) EnableAMP() error {
	s.rec.Event("enable amp")
	return nil
}

func (s *Sim) EnableChannelsLast() error {
	s.rec.Event("enable channels_last")
	return nil
}

func (s *Sim) Module() (Module, []any, error) {
	return s.module, s.inputs, nil
}

func (s *Sim) SetModule(mod Module) error {
	if mod == nil {
		return fmt.Errorf("set_module: nil module")
	}
	s.module = mod
	s.rec.Event("set_module %v", mod)
	return nil
}
