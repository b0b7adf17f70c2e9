package backend

import (
	"fmt"
	"sort"

	"benchopt/internal/args"
	"benchopt/internal/model"
)

// Transform applies a registered backend to m. It must consume rest entirely.
type Transform func(env Env, m *model.Model, rest []string) error

var registry = map[string]Transform{
	args.BackendTorchScript: torchscript,
	args.BackendTorchDynamo: torchdynamo,
	args.BackendCUDAGraph:   cudagraph,
}

// Lookup returns the transform registered under name.
func Lookup(name string) (Transform, bool) {
	t, ok := registry[name]
	return t, ok
}

// Names lists the registered backends in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func torchscript(env Env, m *model.Model, rest []string) error {
	if len(rest) > 0 {
		return ErrUnconsumedArgs(args.BackendTorchScript, rest)
	}
	if env.Tools.Script == nil {
		return unavailable("torchscript")
	}
	return rebind(m, m.EntrySlot(), env.Tools.Script.Script)
}

func cudagraph(env Env, m *model.Model, rest []string) error {
	if len(rest) > 0 {
		return ErrUnconsumedArgs(args.BackendCUDAGraph, rest)
	}
	return capture(env, m)
}

func torchdynamo(env Env, m *model.Model, rest []string) error {
	a, rest, err := args.ParseDynamo(rest)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return ErrUnconsumedArgs(args.BackendTorchDynamo, rest)
	}
	if env.Tools.Dynamo == nil {
		return unavailable("torchdynamo")
	}
	return env.driver().Apply(m, a, m.Precision())
}

func capture(env Env, m *model.Model) error {
	if env.Tools.Graphs == nil {
		return unavailable("cudagraph")
	}
	return rebind(m, m.EntrySlot(), env.Tools.Graphs.Capture)
}

// rebind runs a fallible transformation on the current callable at slot and
// installs the result. On failure the slot is left as it was.
func rebind(m *model.Model, slot model.Slot, transform func(model.Func) (model.Func, error)) error {
	cur, ok := m.Callable(slot)
	if !ok {
		return fmt.Errorf("model %s has no %s entry point", m.ID, slot)
	}
	next, err := transform(cur)
	if err != nil {
		return fmt.Errorf("%s: %w", slot, err)
	}
	return m.Wrap(slot, func(model.Func) model.Func { return next })
}

func unavailable(what string) error {
	return fmt.Errorf("%s: not available in this toolchain", what)
}
