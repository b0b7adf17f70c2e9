package pipeline

// State is a run's position in the configuration pipeline. A run only moves
// forward, one state at a time.
type State int

const (
	Unconfigured State = iota
	Parsed
	Validated
	Decorated
	BackendApplied
	WarmedUp
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "UNCONFIGURED"
	case Parsed:
		return "PARSED"
	case Validated:
		return "VALIDATED"
	case Decorated:
		return "DECORATED"
	case BackendApplied:
		return "BACKEND_APPLIED"
	case WarmedUp:
		return "WARMED_UP"
	default:
		return "UNKNOWN"
	}
}

// stage names the step that leads into s, used as a metric label.
func (s State) stage() string {
	switch s {
	case Parsed:
		return "parse"
	case Validated:
		return "validate"
	case Decorated:
		return "decorate"
	case BackendApplied:
		return "backend"
	case WarmedUp:
		return "warmup"
	default:
		return "none"
	}
}
