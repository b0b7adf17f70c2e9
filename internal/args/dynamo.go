package args

import (
	"fmt"
	"strings"
)

// DynamoFamily groups dynamo backends that need the same compiler selection.
type DynamoFamily int

const (
	FamilyGeneric DynamoFamily = iota
	FamilyInductor
	FamilyFX2TRT
	FamilyBlade
	FamilyIPEX
)

func (f DynamoFamily) String() string {
	switch f {
	case FamilyInductor:
		return "inductor"
	case FamilyFX2TRT:
		return "fx2trt"
	case FamilyBlade:
		return "blade"
	case FamilyIPEX:
		return "ipex"
	default:
		return "generic"
	}
}

// DynamoBackend is a --torchdynamo value resolved against the known table.
type DynamoBackend struct {
	Name   string
	Family DynamoFamily
}

var dynamoBackends = []DynamoBackend{
	{"eager", FamilyGeneric},
	{"aot_eager", FamilyGeneric},
	{"aot_cudagraphs", FamilyGeneric},
	{"aot_nvfuser", FamilyGeneric},
	{"cudagraphs", FamilyGeneric},
	{"nvfuser", FamilyGeneric},
	{"ofi", FamilyGeneric},
	{"onnxrt", FamilyGeneric},
	{"tensorrt", FamilyGeneric},
	{"inductor", FamilyInductor},
	{"fx2trt", FamilyFX2TRT},
	{"blade_optimize_dynamo", FamilyBlade},
	{"ipex", FamilyIPEX},
}

// DynamoBackends lists the names accepted by --torchdynamo.
func DynamoBackends() []string {
	out := make([]string, len(dynamoBackends))
	for i, b := range dynamoBackends {
		out[i] = b.Name
	}
	return out
}

// LookupDynamoBackend resolves name against the known dynamo backends.
func LookupDynamoBackend(name string) (DynamoBackend, bool) {
	for _, b := range dynamoBackends {
		if b.Name == name {
			return b, true
		}
	}
	return DynamoBackend{}, false
}

// DynamoArgs is the validated dynamo group.
type DynamoArgs struct {
	Backend                DynamoBackend
	TritonMM               string
	OptimizeDDP            bool
	InductorCUDAGraph      bool
	InductorFallbackRandom bool
	DisableOptimizerStep   bool
	TRT                    bool
}

// ParseDynamo extracts the dynamo options from raw and returns the tokens it
// did not consume. --torchdynamo is required.
func ParseDynamo(raw []string) (DynamoArgs, []string, error) {
	var (
		d    DynamoArgs
		name string
	)
	g := newGroup("dynamo")
	g.enum(&name, "torchdynamo", "", DynamoBackends(), "Specify torchdynamo backends")
	g.fs.StringVar(&d.TritonMM, "tritonmm", "", "torchinductor.config.triton.mm configuration")
	g.fs.BoolVar(&d.OptimizeDDP, "optimize_dynamo_ddp", false, "enable extra optimizations for DDP + dynamo")
	g.truth(&d.InductorCUDAGraph, "torchinductor_cudagraph", true, "capture inductor kernels in cuda graphs {true,false}")
	g.truth(&d.InductorFallbackRandom, "torchinductor_fallback_random", false, "use eager rand() under inductor {true,false}")
	g.truth(&d.DisableOptimizerStep, "dynamo_disable_optimizer_step", false, "never trace the optimizer step {true,false}")
	g.fs.BoolVar(&d.TRT, "trt", false, "use blade tensorrt backend")
	rest, err := g.parseKnown(raw)
	if err != nil {
		return d, nil, err
	}
	if name == "" {
		return d, nil, ErrUnsupported("--torchdynamo", fmt.Sprintf("a dynamo backend is required, choose from %s", strings.Join(DynamoBackends(), ", ")))
	}
	d.Backend, _ = LookupDynamoBackend(name)
	return d, rest, nil
}
