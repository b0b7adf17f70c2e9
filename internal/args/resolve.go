package args

import (
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// Resolved is the outcome of both option tiers for one run.
type Resolved struct {
	Decoration DecorationArgs
	Opt        OptArgs
	// Tokens neither tier consumed; they belong to the selected backend.
	Remainder []string
}

// Parse runs both tiers without validating. The decoration tier sees raw,
// the optimization tier sees what decoration left over.
func Parse(m *model.Model, raw []string) (Resolved, error) {
	var r Resolved
	d, rest, err := parseDecoration(m, raw)
	if err != nil {
		return r, err
	}
	o, rest, err := parseOpt(rest)
	if err != nil {
		return r, err
	}
	return Resolved{Decoration: d, Opt: o, Remainder: rest}, nil
}

// Validate checks r against m, applying the forced opt overrides in place.
func Validate(m *model.Model, r *Resolved) error {
	if err := ValidateDecoration(m, r.Decoration); err != nil {
		return err
	}
	return ValidateOpt(m, &r.Opt)
}

// Resolve parses and validates raw for m.
func Resolve(m *model.Model, raw []string) (Resolved, error) {
	r, err := Parse(m, raw)
	if err != nil {
		return r, err
	}
	if err := Validate(m, &r); err != nil {
		return r, err
	}
	return r, nil
}

// Response converts r into its wire form.
func (r Resolved) Response(m *model.Model) types.ResolveResponse {
	return types.ResolveResponse{
		Model: m.ID,
		Decoration: types.DecorationOptions{
			Distributed:       r.Decoration.Distributed,
			DistributedWrapFn: r.Decoration.DistributedWrapFn,
			Precision:         r.Decoration.Precision,
			ChannelsLast:      r.Decoration.ChannelsLast,
			SkipCorrectness:   r.Decoration.SkipCorrectness,
		},
		Opt: types.OptOptions{
			Backend:             r.Opt.Backend,
			FX2TRT:              r.Opt.FX2TRT,
			Fuser:               r.Opt.Fuser,
			TorchTRT:            r.Opt.TorchTRT,
			Flops:               r.Opt.Flops,
			UseCosineSimilarity: r.Opt.UseCosineSimilarity,
			Blade:               r.Opt.Blade,
			CUDAGraph:           r.Opt.CUDAGraph,
		},
		Remainder:        append([]string{}, r.Remainder...),
		CheckCorrectness: CheckCorrectness(m, r.Opt, r.Decoration),
	}
}
