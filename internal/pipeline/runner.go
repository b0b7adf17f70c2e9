// Package pipeline drives one configuration run through parse, validate,
// decorate, backend and warm-up, and reports what happened.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"benchopt/internal/args"
	"benchopt/internal/backend"
	"benchopt/internal/events"
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// Runner owns one run against one model. It is not safe for concurrent use.
type Runner struct {
	id       string
	env      backend.Env
	m        *model.Model
	state    State
	resolved args.Resolved
	seen     *events.Memory
}

// NewRunner prepares a run of m under a fresh run id. Events the appliers
// publish go to env.Events as well as to the run's own record and the
// pipeline metrics.
func NewRunner(env backend.Env, m *model.Model) *Runner {
	id := uuid.NewString()
	env.Log = env.Log.With().Str("run_id", id).Logger()
	seen := events.NewMemory()
	env.Events = events.Fanout{env.Events, seen, metricsPublisher{}, events.Log{L: env.Log}}
	return &Runner{id: id, env: env, m: m, seen: seen}
}

func (r *Runner) ID() string { return r.id }

func (r *Runner) State() State { return r.state }

// Resolved returns the parsed options; valid from Parsed on.
func (r *Runner) Resolved() args.Resolved { return r.resolved }

func (r *Runner) Model() *model.Model { return r.m }

// Parse splits raw into the decoration and optimization groups.
func (r *Runner) Parse(raw []string) error {
	return r.step(Parsed, func() error {
		res, err := args.Parse(r.m, raw)
		if err != nil {
			return err
		}
		r.resolved = res
		return nil
	})
}

// Validate checks the parsed options against the model. Nothing on the model
// changes here.
func (r *Runner) Validate() error {
	return r.step(Validated, func() error {
		err := args.Validate(r.m, &r.resolved)
		if opt := args.UnsupportedOption(err); opt != "" {
			validationFailuresTotal.WithLabelValues(opt).Inc()
		}
		return err
	})
}

func (r *Runner) Decorate() error {
	return r.step(Decorated, func() error {
		return backend.ApplyDecoration(r.env, r.m, r.resolved.Decoration)
	})
}

// ApplyBackend runs the optimization applier. For torchdynamo this includes
// the warm-up rounds.
func (r *Runner) ApplyBackend() error {
	return r.step(BackendApplied, func() error {
		return backend.ApplyOpt(r.env, r.m, r.resolved.Opt, r.resolved.Remainder)
	})
}

// WarmUp completes the run. Warm-up itself happens inside the dynamo backend;
// every other path has nothing left to do.
func (r *Runner) WarmUp() error {
	return r.step(WarmedUp, func() error { return nil })
}

// Run performs every remaining step in order and returns the report. It stops
// at the first error or when ctx is done between steps.
func (r *Runner) Run(ctx context.Context, raw []string) (types.ApplyResponse, error) {
	steps := []func() error{
		func() error { return r.Parse(raw) },
		r.Validate,
		r.Decorate,
		r.ApplyBackend,
		r.WarmUp,
	}
	for _, fn := range steps {
		if err := ctx.Err(); err != nil {
			runsTotal.WithLabelValues("canceled").Inc()
			return r.Report(), err
		}
		if err := fn(); err != nil {
			runsTotal.WithLabelValues(result(err)).Inc()
			return r.Report(), err
		}
	}
	runsTotal.WithLabelValues("ok").Inc()
	return r.Report(), nil
}

// Report summarises the run so far.
func (r *Runner) Report() types.ApplyResponse {
	rep := types.ApplyResponse{
		RunID:          r.id,
		Model:          r.m.ID,
		State:          r.state.String(),
		Invocations:    r.seen.Count(events.WarmupInvocation),
		CompilerResets: r.seen.Count(events.CompilerReset),
	}
	for _, e := range r.seen.Events() {
		if e.Name != events.FeatureUnavailable {
			continue
		}
		if reason, ok := e.Fields["reason"].(string); ok {
			rep.Warnings = append(rep.Warnings, reason)
		}
	}
	return rep
}

func (r *Runner) step(to State, fn func() error) error {
	if r.state != to-1 {
		return outOfOrderError{at: r.state, want: to}
	}
	start := time.Now()
	err := fn()
	stageDuration.WithLabelValues(to.stage()).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	r.state = to
	r.env.Events.Publish(events.Event{Name: events.StateChanged, ModelID: r.m.ID, Fields: map[string]any{"state": to.String()}})
	return nil
}

func result(err error) string {
	switch {
	case args.IsUsage(err):
		return "usage_error"
	case args.IsUnsupported(err):
		return "config_error"
	case backend.IsUnconsumedArgs(err):
		return "usage_error"
	case backend.IsIncompatible(err):
		return "config_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
