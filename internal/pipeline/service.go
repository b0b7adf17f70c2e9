package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"benchopt/internal/args"
	"benchopt/internal/backend"
	"benchopt/internal/compiler"
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// Catalog looks up model descriptors. *registry.Registry and *registry.Live
// implement it.
type Catalog interface {
	List() []types.Model
	Find(id string) (types.Model, bool)
}

// Service answers resolve and apply requests against registered models. Each
// apply runs on a fresh simulated model with its own compiler state, so
// concurrent requests never share a configuration.
type Service struct {
	reg         Catalog
	defaultArgs []string
	log         zerolog.Logger
}

// NewService returns a service over reg. defaultArgs are prepended to every
// request's tokens.
func NewService(reg Catalog, defaultArgs []string, log zerolog.Logger) *Service {
	return &Service{reg: reg, defaultArgs: append([]string(nil), defaultArgs...), log: log}
}

func (s *Service) ListModels() []types.Model { return s.reg.List() }

func (s *Service) Backends() types.BackendsResponse {
	return types.BackendsResponse{Backends: backend.Names(), DynamoBackends: args.DynamoBackends()}
}

// Resolve parses and validates req without touching the model.
func (s *Service) Resolve(req types.ResolveRequest) (types.ResolveResponse, error) {
	run, _, err := s.newRun(req.Model)
	if err != nil {
		return types.ResolveResponse{}, err
	}
	if err := run.Parse(s.tokens(req.Args)); err != nil {
		return types.ResolveResponse{}, err
	}
	if err := run.Validate(); err != nil {
		return types.ResolveResponse{}, err
	}
	return run.Resolved().Response(run.Model()), nil
}

// Apply runs the whole pipeline on a simulated instance of the model. The
// report carries the simulated model's trace even when the run fails.
func (s *Service) Apply(ctx context.Context, req types.ResolveRequest) (types.ApplyResponse, error) {
	run, rec, err := s.newRun(req.Model)
	if err != nil {
		return types.ApplyResponse{Model: req.Model}, err
	}
	rep, err := run.Run(ctx, s.tokens(req.Args))
	rep.Trace = rec.Events()
	return rep, err
}

func (s *Service) newRun(id string) (*Runner, *model.Recorder, error) {
	desc, ok := s.reg.Find(id)
	if !ok {
		return nil, nil, ErrModelNotFound(id)
	}
	rec := model.NewRecorder()
	m, _, err := model.NewSimModel(desc, rec)
	if err != nil {
		return nil, nil, fmt.Errorf("build model: %w", err)
	}
	st := compiler.NewState()
	env := backend.Env{
		State: st,
		Tools: backend.NewSim(st, rec).Toolchain(),
		Log:   s.log.With().Str("model", desc.ID).Logger(),
	}
	return NewRunner(env, m), rec, nil
}

func (s *Service) tokens(raw []string) []string {
	out := make([]string, 0, len(s.defaultArgs)+len(raw))
	out = append(out, s.defaultArgs...)
	return append(out, raw...)
}
