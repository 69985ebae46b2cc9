package sandbox

import (
	"strconv"
	"strings"

	"codeduel/internal/domain/model"
)

// Classify turns raw harness output into a structured outcome. Per-test
// records ("@@TEST@@|<n>|<verdict>|<detail>") are parsed and stripped; the
// remaining lines form the human-readable transcript. A run passes when it
// produced at least one record and every record is a PASS.
func Classify(raw string) model.ExecutionOutcome {
	var (
		tests  []model.TestResult
		humans []string
	)
	for _, line := range strings.SplitAfter(raw, "\n") {
		if line == "" {
			continue
		}
		trimmed := strings.TrimRight(line, "\n")
		if rec, ok := parseRecord(trimmed); ok {
			tests = append(tests, rec)
			continue
		}
		humans = append(humans, trimmed)
	}

	allPass := len(tests) > 0
	for _, t := range tests {
		if t.Verdict != model.VerdictPass {
			allPass = false
			break
		}
	}

	return model.ExecutionOutcome{
		Output:  strings.Join(humans, "\n"),
		Tests:   tests,
		AllPass: allPass,
	}
}

func parseRecord(line string) (model.TestResult, bool) {
	if !strings.HasPrefix(line, model.RecordMarker+"|") {
		return model.TestResult{}, false
	}
	parts := strings.SplitN(line, "|", 4)
	if len(parts) < 3 {
		return model.TestResult{}, false
	}
	num, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.TestResult{}, false
	}
	verdict := model.Verdict(parts[2])
	switch verdict {
	case model.VerdictPass, model.VerdictFail, model.VerdictError:
	default:
		return model.TestResult{}, false
	}
	rec := model.TestResult{Number: num, Verdict: verdict}
	if len(parts) == 4 {
		rec.Detail = parts[3]
	}
	return rec, true
}
