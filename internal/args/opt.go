package args

import (
	"fmt"

	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// Registered backend names. The set is fixed.
const (
	BackendCUDAGraph   = "cudagraph"
	BackendTorchDynamo = "torchdynamo"
	BackendTorchScript = "torchscript"
)

// Backends lists the names accepted by --backend.
var Backends = []string{BackendCUDAGraph, BackendTorchDynamo, BackendTorchScript}

// OptArgs is the validated optimization group.
type OptArgs struct {
	Backend             string
	FX2TRT              bool
	Fuser               types.Fuser
	TorchTRT            bool
	Flops               types.Flops
	UseCosineSimilarity bool
	Blade               bool
	CUDAGraph           bool
}

func (o OptArgs) any() bool {
	return o.Backend != "" || o.FX2TRT || o.Fuser != "" || o.TorchTRT || o.Flops != "" ||
		o.UseCosineSimilarity || o.Blade || o.CUDAGraph
}

// ParseOpt extracts the optimization options from raw, validates them against
// m and returns the tokens it did not consume. A jit model always gets the
// torchscript backend; torchvision models never get cudagraph.
func ParseOpt(m *model.Model, raw []string) (OptArgs, []string, error) {
	o, rest, err := parseOpt(raw)
	if err != nil {
		return o, nil, err
	}
	if err := ValidateOpt(m, &o); err != nil {
		return o, nil, err
	}
	return o, rest, nil
}

func parseOpt(raw []string) (OptArgs, []string, error) {
	var (
		o             OptArgs
		backend, fuse string
		flops         string
	)
	g := newGroup("opt")
	g.enum(&backend, "backend", "", Backends, "enable backends")
	g.fs.BoolVar(&o.FX2TRT, "fx2trt", false, "enable fx2trt")
	g.enum(&fuse, "fuser", "", types.Fusers, "enable fuser")
	g.fs.BoolVar(&o.TorchTRT, "torch_trt", false, "enable torch_tensorrt")
	g.enum(&flops, "flops", "", types.FlopsMethods, "Return the flops result")
	g.fs.BoolVar(&o.UseCosineSimilarity, "use_cosine_similarity", false, "use cosine similarity for correctness check")
	g.fs.BoolVar(&o.Blade, "blade", false, "enable blade optimize")
	g.boolPair(&o.CUDAGraph, "cudagraph", false, "capture the benchmark entry point in a cuda graph")
	rest, err := g.parseKnown(raw)
	if err != nil {
		return o, nil, err
	}
	o.Backend = backend
	o.Fuser = types.Fuser(fuse)
	o.Flops = types.Flops(flops)
	return o, rest, nil
}

// ValidateOpt applies the forced overrides to o and checks the result.
func ValidateOpt(m *model.Model, o *OptArgs) error {
	if m.JIT {
		o.Backend = BackendTorchScript
	}
	if m.Device == types.DeviceCPU && o.Fuser != "" {
		return ErrUnsupported("--fuser", fmt.Sprintf("fuser %s only works with GPU, but the model runs on %s", o.Fuser, m.Device))
	}
	if !(m.Device == types.DeviceCUDA && m.Test == types.TestEval) {
		if o.FX2TRT {
			return ErrUnsupported("--fx2trt", fmt.Sprintf("TensorRT only works for CUDA inference tests, got %s %s", m.Device, m.Test))
		}
		if o.TorchTRT {
			return ErrUnsupported("--torch_trt", fmt.Sprintf("TensorRT only works for CUDA inference tests, got %s %s", m.Device, m.Test))
		}
	}
	if IsTorchVision(m) {
		o.CUDAGraph = false
	}
	return nil
}
