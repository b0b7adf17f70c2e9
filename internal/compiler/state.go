// Package compiler holds the process-wide compiler configuration that
// backends read and write: reduced-precision matmul switches, inductor knobs,
// the distributed-optimization flag, and the compiler counters.
//
// There is one State per process. It is passed explicitly to everything that
// touches it; fields that must be scoped are overridden through Override*
// helpers that return a restore func.
package compiler

import "sync"

// InductorConfig mirrors the inductor compiler knobs a run can set.
type InductorConfig struct {
	CUDAGraphs     bool   `json:"cudagraphs"`
	TritonMM       string `json:"triton_mm,omitempty"`
	FallbackRandom bool   `json:"fallback_random"`
}

// State is the process-wide compiler configuration.
type State struct {
	mu                         sync.Mutex
	allowTF32Matmul            bool
	allowTF32CuDNN             bool
	optimizeDDP                bool
	legacyNonFakeExampleInputs bool
	inductor                   InductorConfig
	counters                   map[string]int
	resets                     int
}

// Snapshot is a read-only copy of State for reporting.
type Snapshot struct {
	AllowTF32Matmul            bool           `json:"allow_tf32_matmul"`
	AllowTF32CuDNN             bool           `json:"allow_tf32_cudnn"`
	OptimizeDDP                bool           `json:"optimize_ddp"`
	LegacyNonFakeExampleInputs bool           `json:"legacy_non_fake_example_inputs"`
	Inductor                   InductorConfig `json:"inductor"`
	Counters                   map[string]int `json:"counters,omitempty"`
	Resets                     int            `json:"resets"`
}

// NewState returns the defaults a fresh process starts with.
func NewState() *State {
	return &State{
		inductor: InductorConfig{CUDAGraphs: true},
		counters: make(map[string]int),
	}
}

// SetAllowTF32 sets the matmul and cudnn reduced-precision switches.
func (s *State) SetAllowTF32(matmul, cudnn bool) {
	s.mu.Lock()
	s.allowTF32Matmul = matmul
	s.allowTF32CuDNN = cudnn
	s.mu.Unlock()
}

func (s *State) AllowTF32() (matmul, cudnn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowTF32Matmul, s.allowTF32CuDNN
}

func (s *State) SetInductor(c InductorConfig) {
	s.mu.Lock()
	s.inductor = c
	s.mu.Unlock()
}

func (s *State) Inductor() InductorConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inductor
}

func (s *State) SetLegacyNonFakeExampleInputs(v bool) {
	s.mu.Lock()
	s.legacyNonFakeExampleInputs = v
	s.mu.Unlock()
}

func (s *State) OptimizeDDP() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.optimizeDDP
}

// OverrideOptimizeDDP sets the distributed-optimization flag to v and returns
// the func restoring the value it had before.
func (s *State) OverrideOptimizeDDP(v bool) (restore func()) {
	s.mu.Lock()
	old := s.optimizeDDP
	s.optimizeDDP = v
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.optimizeDDP = old
		s.mu.Unlock()
	}
}

// Incr bumps a named compiler counter.
func (s *State) Incr(name string) {
	s.mu.Lock()
	s.counters[name]++
	s.mu.Unlock()
}

func (s *State) Counter(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[name]
}

// Reset clears the compiler counters. Calling it repeatedly is safe; each call
// costs the same.
func (s *State) Reset() {
	s.mu.Lock()
	s.counters = make(map[string]int)
	s.resets++
	s.mu.Unlock()
}

// Resets returns how many times Reset has been called.
func (s *State) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var counters map[string]int
	if len(s.counters) > 0 {
		counters = make(map[string]int, len(s.counters))
		for k, v := range s.counters {
			counters[k] = v
		}
	}
	return Snapshot{
		AllowTF32Matmul:            s.allowTF32Matmul,
		AllowTF32CuDNN:             s.allowTF32CuDNN,
		OptimizeDDP:                s.optimizeDDP,
		LegacyNonFakeExampleInputs: s.legacyNonFakeExampleInputs,
		Inductor:                   s.inductor,
		Counters:                   counters,
		Resets:                     s.resets,
	}
}
