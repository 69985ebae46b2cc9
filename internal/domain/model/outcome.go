package model

// RecordMarker prefixes the machine-readable per-test line the harness
// driver emits next to the human-readable one. The sandbox parses these
// records instead of sniffing free text, so a submission printing "FAIL" on
// its own cannot be mistaken for a failing test.
const RecordMarker = "@@TEST@@"

type Verdict string

const (
	VerdictPass  Verdict = "PASS"
	VerdictFail  Verdict = "FAIL"
	VerdictError Verdict = "ERROR"
)

// TestResult is one structured per-test record parsed from harness output.
type TestResult struct {
	Number  int     `json:"number"`
	Verdict Verdict `json:"verdict"`
	Detail  string  `json:"detail,omitempty"` // got/expected text or exception message
}

// ExecutionOutcome is what a sandbox run produces. Timeouts and launch
// faults are represented as failed outcomes, never as errors.
type ExecutionOutcome struct {
	Output   string       `json:"output"` // human-readable transcript
	Tests    []TestResult `json:"tests,omitempty"`
	AllPass  bool         `json:"all_pass"`
	TimedOut bool         `json:"timed_out"`
}
