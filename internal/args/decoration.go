package args

import (
	"fmt"

	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// DecorationArgs is the validated decoration group.
type DecorationArgs struct {
	Distributed       types.Distributed
	DistributedWrapFn string
	Precision         types.Precision
	ChannelsLast      bool
	SkipCorrectness   bool
}

// ParseDecoration extracts the decoration options from raw, validates them
// against m and returns the tokens it did not consume.
func ParseDecoration(m *model.Model, raw []string) (DecorationArgs, []string, error) {
	d, rest, err := parseDecoration(m, raw)
	if err != nil {
		return d, nil, err
	}
	if err := ValidateDecoration(m, d); err != nil {
		return d, nil, err
	}
	return d, rest, nil
}

func parseDecoration(m *model.Model, raw []string) (DecorationArgs, []string, error) {
	var (
		d           DecorationArgs
		distributed string
		precision   string
	)
	g := newGroup("decoration")
	g.enum(&distributed, "distributed", "", types.DistributedTrainers, "Enable distributed trainer")
	g.fs.StringVar(&d.DistributedWrapFn, "distributed_wrap_fn", "", "Path to function that will apply distributed wrapping fn(model, dargs.distributed)")
	g.enum(&precision, "precision", string(PrecisionDefault(m)), types.Precisions, "choose precisions from: fp32, tf32, fp16, or amp")
	g.fs.BoolVar(&d.ChannelsLast, "channels-last", false, "enable channels-last memory layout")
	g.fs.BoolVar(&d.SkipCorrectness, "skip_correctness", false, "Skip correctness checks")
	rest, err := g.parseKnown(raw)
	if err != nil {
		return d, nil, err
	}
	d.Distributed = types.Distributed(distributed)
	d.Precision = types.Precision(precision)
	return d, rest, nil
}

// ValidateDecoration checks d against the model's device, test and
// capabilities.
func ValidateDecoration(m *model.Model, d DecorationArgs) error {
	if !CheckPrecision(m, d.Precision) {
		return ErrUnsupported("--precision", fmt.Sprintf("precision value: %s is not supported on %s %s. "+
			"fp16 requires cuda and the enable_fp16_half capability; tf32 requires cuda; "+
			"amp requires cuda eval, or cuda train with enable_amp or staged train interfaces (forward, backward, optimizer)",
			d.Precision, m.Device, m.Test))
	}
	if !CheckMemoryLayout(m, d.ChannelsLast) {
		return ErrUnsupported("--channels-last", fmt.Sprintf("specified channels_last: %t, but the model doesn't implement the enable_channels_last interface", d.ChannelsLast))
	}
	if !CheckDistributedTrainer(m, d.Distributed) {
		return ErrUnsupported("--distributed", fmt.Sprintf("distributed trainer %s is only supported for train tests, but got test: %s", d.Distributed, m.Test))
	}
	return nil
}
