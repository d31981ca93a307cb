package tidy

// Phase is one invocation of the external tool under one check configuration.
type Phase struct {
	Name    string `json:"name"`
	Check   string `json:"check"`
	Banner  string `json:"-"` // written to the output log before the run
	Console string `json:"-"` // printed to the console before the run
}

// Default check names of the checked-arithmetic plugin.
const (
	DefaultDebugCheck      = "modernize-use-checked-arithmetic-debug"
	DefaultTypedDebugCheck = "modernize-use-checked-arithmetic-typed-debug"
	DefaultRealCheck       = "modernize-use-checked-arithmetic"
)

// Phase names.
const (
	PhaseDebug      = "debug"
	PhaseTypedDebug = "typed-debug"
	PhaseReal       = "real"
)

// Checks names the check configuration used by each phase.
type Checks struct {
	Debug      string
	TypedDebug string
	Real       string
}

// DefaultChecks returns the stock plugin check names.
func DefaultChecks() Checks {
	return Checks{
		Debug:      DefaultDebugCheck,
		TypedDebug: DefaultTypedDebugCheck,
		Real:       DefaultRealCheck,
	}
}

// Phases returns the three phases in the order they must run.
func (c Checks) Phases() []Phase {
	return []Phase{
		{Name: PhaseDebug, Check: c.Debug, Banner: "DEBUG MATCHER", Console: "[*] Running debug plugin"},
		{Name: PhaseTypedDebug, Check: c.TypedDebug, Banner: "TYPED DEBUG MATCHER", Console: "[*] Running typed debug plugin"},
		{Name: PhaseReal, Check: c.Real, Banner: "REAL MATCHER", Console: "[*] Running plugin"},
	}
}

// ChecksArg builds the --checks flag that disables every check but one.
func ChecksArg(check string) string {
	return "--checks=-*, " + check
}
