package types

// Precision is the numeric mode a benchmark runs in.
type Precision string

const (
	PrecisionFP32 Precision = "fp32"
	PrecisionTF32 Precision = "tf32"
	PrecisionFP16 Precision = "fp16"
	PrecisionAMP  Precision = "amp"
)

// Precisions lists every accepted --precision value in help order.
var Precisions = []string{string(PrecisionFP32), string(PrecisionTF32), string(PrecisionFP16), string(PrecisionAMP)}

// Device is where a model runs.
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// TestMode selects the benchmark being timed.
type TestMode string

const (
	TestEval  TestMode = "eval"
	TestTrain TestMode = "train"
)

// Distributed is the distributed trainer wrapping, empty when disabled.
type Distributed string

const (
	DistributedNone             Distributed = ""
	DistributedDDP              Distributed = "ddp"
	DistributedDDPNoStaticGraph Distributed = "ddp_no_static_graph"
	DistributedFSDP             Distributed = "fsdp"
)

var DistributedTrainers = []string{string(DistributedDDP), string(DistributedDDPNoStaticGraph), string(DistributedFSDP)}

// Fuser names a JIT fuser, empty when disabled.
type Fuser string

var Fusers = []string{"fuser0", "fuser1", "fuser2"}

// Flops names a flop counting method, empty when disabled.
type Flops string

const (
	FlopsNone   Flops = ""
	FlopsFVCore Flops = "fvcore"
	FlopsDCGM   Flops = "dcgm"
)

var FlopsMethods = []string{string(FlopsFVCore), string(FlopsDCGM)}

// Stage tags the phase of a staged train test a scope applies to.
type Stage int

const (
	StageForward Stage = iota
	StageBackward
	StageOptimizer
	StageAll
)

func (s Stage) String() string {
	switch s {
	case StageForward:
		return "FORWARD"
	case StageBackward:
		return "BACKWARD"
	case StageOptimizer:
		return "OPTIMIZER"
	case StageAll:
		return "ALL"
	default:
		return "UNKNOWN"
	}
}

// Family marks model suites that need special handling.
type Family string

const (
	FamilyNone        Family = ""
	FamilyTorchVision Family = "torchvision"
	FamilyHuggingFace Family = "huggingface"
	FamilyTimm        Family = "timm"
	FamilyFAMBench    Family = "fambench"
)

// Capability names accepted in model manifests.
const (
	CapabilityFP16Half     = "fp16_half"
	CapabilityAMP          = "amp"
	CapabilityChannelsLast = "channels_last"
	CapabilityStagedTrain  = "staged_train"
	CapabilityModuleIO     = "module_io"
	CapabilityOptimizer    = "optimizer_step"
	CapabilityCfgOptimizer = "cfg_optimizer_step"
)

// Model describes a benchmark model and what it declares it can do.
type Model struct {
	// Stable identifier for the model.
	// example: resnet50
	ID string `json:"id" yaml:"id" toml:"id" example:"resnet50"`
	// Human-friendly name.
	// example: ResNet-50
	Name string `json:"name" yaml:"name" toml:"name" example:"ResNet-50"`
	// Manifest path the descriptor was loaded from.
	Path string `json:"path,omitempty" yaml:"-" toml:"-"`
	// Optional suite family (torchvision, huggingface, timm, fambench).
	// example: torchvision
	Family Family `json:"family,omitempty" yaml:"family" toml:"family" example:"torchvision"`
	// example: cuda
	Device Device `json:"device" yaml:"device" toml:"device" example:"cuda"`
	// example: eval
	Test TestMode `json:"test" yaml:"test" toml:"test" example:"eval"`
	// Run the scripted variant; forces the torchscript backend.
	JIT bool `json:"jit,omitempty" yaml:"jit" toml:"jit"`
	// example: 32
	BatchSize int `json:"batch_size,omitempty" yaml:"batch_size" toml:"batch_size" example:"32"`
	// Sequence length used by huggingface export hints.
	MaxLength int `json:"max_length,omitempty" yaml:"max_length" toml:"max_length"`
	// Declared capabilities, see the Capability* constants.
	// example: ["fp16_half","channels_last"]
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities" toml:"capabilities"`
	// Precision used when --precision is omitted on cuda eval/train tests.
	DefaultEvalCUDAPrecision  Precision `json:"default_eval_cuda_precision,omitempty" yaml:"default_eval_cuda_precision" toml:"default_eval_cuda_precision"`
	DefaultTrainCUDAPrecision Precision `json:"default_train_cuda_precision,omitempty" yaml:"default_train_cuda_precision" toml:"default_train_cuda_precision"`
	// The model cannot be checked for correctness (e.g. detectron2).
	SkipCorrectnessCheck bool `json:"skip_correctness_check,omitempty" yaml:"skip_correctness_check" toml:"skip_correctness_check"`
}
