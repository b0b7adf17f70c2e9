package args

import (
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// The predicates below read only the model's descriptor and declared
// capability set.

func IsTorchVision(m *model.Model) bool { return m.Family == types.FamilyTorchVision }
func IsHF(m *model.Model) bool          { return m.Family == types.FamilyHuggingFace }
func IsTimm(m *model.Model) bool        { return m.Family == types.FamilyTimm }
func IsFAMBench(m *model.Model) bool    { return m.Family == types.FamilyFAMBench }

// IsStagedTrainTest reports whether the model exposes forward, backward and
// optimizer as separate entry points.
func IsStagedTrainTest(m *model.Model) bool { return m.Has(model.CapStagedTrain) }

// HFMaxLength returns the sequence length export backends need for
// huggingface models, and 0 for everything else.
func HFMaxLength(m *model.Model) int {
	if IsHF(m) {
		return m.MaxLength
	}
	return 0
}

// CheckPrecision reports whether the model can run at precision p.
//
//	fp16: cuda and the fp16_half capability
//	tf32: cuda
//	amp:  cuda eval, or cuda train with the amp capability or staged train
//	fp32: always
func CheckPrecision(m *model.Model, p types.Precision) bool {
	cuda := m.Device == types.DeviceCUDA
	switch p {
	case types.PrecisionFP16:
		return cuda && m.Has(model.CapFP16Half)
	case types.PrecisionTF32:
		return cuda
	case types.PrecisionAMP:
		if !cuda {
			return false
		}
		if m.Test == types.TestEval {
			return true
		}
		return m.Test == types.TestTrain && (m.Has(model.CapAMP) || IsStagedTrainTest(m))
	case types.PrecisionFP32:
		return true
	}
	return false
}

// CheckMemoryLayout reports whether channels-last can be enabled.
func CheckMemoryLayout(m *model.Model, channelsLast bool) bool {
	return !channelsLast || m.Has(model.CapChannelsLast)
}

// CheckDistributedTrainer reports whether a distributed trainer may wrap
// the model; only train tests can be distributed.
func CheckDistributedTrainer(m *model.Model, d types.Distributed) bool {
	return d == types.DistributedNone || m.Test == types.TestTrain
}

// PrecisionDefault is the precision used when --precision is omitted: the
// model's declared cuda default for its test, fp32 otherwise.
func PrecisionDefault(m *model.Model) types.Precision {
	if m.Device == types.DeviceCUDA {
		if m.Test == types.TestEval && m.DefaultEvalCUDAPrecision != "" {
			return m.DefaultEvalCUDAPrecision
		}
		if m.Test == types.TestTrain && m.DefaultTrainCUDAPrecision != "" {
			return m.DefaultTrainCUDAPrecision
		}
	}
	return types.PrecisionFP32
}

// CheckCorrectness reports whether output correctness should be verified for
// this configuration. Models that cannot be checked and --skip_correctness
// opt out; the dynamo backend always checks; any other optimization checks
// eval tests only.
func CheckCorrectness(m *model.Model, opt OptArgs, d DecorationArgs) bool {
	if m.SkipCorrectnessCheck || d.SkipCorrectness {
		return false
	}
	if opt.Backend == BackendTorchDynamo {
		return true
	}
	if opt.any() {
		return m.Test == types.TestEval
	}
	return false
}
