package model

// Comparator selects how the harness judges a returned value against the
// expected output of a test vector.
type Comparator string

const (
	// CompareExact requires the returned value to equal the expected value.
	CompareExact Comparator = "exact"
	// CompareIndexPair accepts a two-element index list in either order.
	CompareIndexPair Comparator = "index_pair"
	// CompareBoolean requires a strict boolean match.
	CompareBoolean Comparator = "boolean"
)

// TestVector is one hidden test: named inputs and the expected output.
// Input and output shapes are problem-specific (lists, scalars, booleans,
// strings) and travel as JSON values into the generated harness.
type TestVector struct {
	Inputs   map[string]any `json:"inputs"`
	Expected any            `json:"expected"`
}

// Problem is an immutable catalog entry.
type Problem struct {
	ID          int          `json:"id"`
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	Signature   string       `json:"signature"`
	Statement   string       `json:"statement"`
	Starter     string       `json:"starter"`
	FuncName    string       `json:"func_name"`
	Params      []string     `json:"params"` // argument order for the harness call
	Comparator  Comparator   `json:"comparator"`
	TestVectors []TestVector `json:"test_vectors"`
}

// ProblemSummary is the client-facing subset returned by the match API.
type ProblemSummary struct {
	Title     string `json:"title"`
	Signature string `json:"signature"`
	Statement string `json:"statement"`
	Starter   string `json:"starter"`
	Slug      string `json:"slug"`
}

func (p *Problem) Summary() ProblemSummary {
	return ProblemSummary{
		Title:     p.Title,
		Signature: p.Signature,
		Statement: p.Statement,
		Starter:   p.Starter,
		Slug:      p.Slug,
	}
}
