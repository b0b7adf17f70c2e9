package types

// ResolveRequest asks the resolver to parse and validate an option list
// against a registered model.
type ResolveRequest struct {
	// Registered model id.
	// example: resnet50
	Model string `json:"model" example:"resnet50"`
	// Raw option tokens, decoration and optimization groups mixed.
	// example: ["--precision","fp16","--backend","torchdynamo","--torchdynamo","inductor"]
	Args []string `json:"args"`
}

// DecorationOptions mirrors the validated decoration group.
type DecorationOptions struct {
	Distributed       Distributed `json:"distributed,omitempty"`
	DistributedWrapFn string      `json:"distributed_wrap_fn,omitempty"`
	// example: fp16
	Precision       Precision `json:"precision" example:"fp16"`
	ChannelsLast    bool      `json:"channels_last"`
	SkipCorrectness bool      `json:"skip_correctness"`
}

// OptOptions mirrors the validated optimization group.
type OptOptions struct {
	// example: torchdynamo
	Backend             string `json:"backend,omitempty" example:"torchdynamo"`
	FX2TRT              bool   `json:"fx2trt"`
	Fuser               Fuser  `json:"fuser,omitempty"`
	TorchTRT            bool   `json:"torch_trt"`
	Flops               Flops  `json:"flops,omitempty"`
	UseCosineSimilarity bool   `json:"use_cosine_similarity"`
	Blade               bool   `json:"blade"`
	CUDAGraph           bool   `json:"cudagraph"`
}

// ResolveResponse is returned by POST /resolve and the resolve command.
type ResolveResponse struct {
	Model      string            `json:"model"`
	Decoration DecorationOptions `json:"decoration"`
	Opt        OptOptions        `json:"opt"`
	// Tokens left for the selected backend.
	Remainder []string `json:"remainder"`
	// Whether output correctness would be checked for this configuration.
	CheckCorrectness bool `json:"check_correctness"`
}

// ApplyResponse reports a full pipeline run on a simulated model.
type ApplyResponse struct {
	// Unique id of this run, also attached to its log lines.
	// example: 3f1c2a9e-8d4b-4a57-9a0e-2b6f5d7c1e42
	RunID string `json:"run_id,omitempty" example:"3f1c2a9e-8d4b-4a57-9a0e-2b6f5d7c1e42"`
	Model string `json:"model"`
	// Final pipeline state.
	// example: WARMED_UP
	State string `json:"state" example:"WARMED_UP"`
	// Invocations performed during warm-up.
	// example: 3
	Invocations int `json:"invocations" example:"3"`
	// Compiler resets performed.
	// example: 2
	CompilerResets int      `json:"compiler_resets" example:"2"`
	Warnings       []string `json:"warnings,omitempty"`
	// Calls observed on the simulated model, in order.
	Trace []string `json:"trace,omitempty"`
}

// BackendsResponse lists the registered backend names.
type BackendsResponse struct {
	// example: ["cudagraph","torchdynamo","torchscript"]
	Backends []string `json:"backends"`
	// Accepted --torchdynamo values.
	DynamoBackends []string `json:"dynamo_backends"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: precision value: fp16 is only supported on cuda
	Error string `json:"error" example:"invalid JSON body"`
	// Offending option, when the error is a configuration error.
	// example: --precision
	Option string `json:"option,omitempty" example:"--precision"`
	// HTTP status code.
	// example: 422
	Code int `json:"code" example:"422"`
}
