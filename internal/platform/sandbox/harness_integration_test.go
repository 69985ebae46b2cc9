package sandbox_test

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeduel/internal/app/harness"
	"codeduel/internal/domain/catalog"
	"codeduel/internal/domain/model"
	"codeduel/internal/platform/sandbox"
)

// End-to-end harness runs against a real interpreter. Skipped when python3
// is not installed so CI without it still passes the rest of the package.

func pythonRunner(t *testing.T) *sandbox.Runner {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return sandbox.NewRunner("python3", 5*time.Second, logger)
}

func buildAndRun(t *testing.T, problemID int, source string) model.ExecutionOutcome {
	t.Helper()
	r := pythonRunner(t)
	b := harness.NewBuilder(catalog.New())
	script, err := b.Build(problemID, source)
	require.NoError(t, err)
	return r.Run(context.Background(), script)
}

func TestTwoSumAcceptsEitherIndexOrder(t *testing.T) {
	correct := `
def two_sum(nums, target):
    for i in range(len(nums)):
        for j in range(i + 1, len(nums)):
            if nums[i] + nums[j] == target:
                return [i, j]
    return []
`
	out := buildAndRun(t, 1, correct)
	assert.True(t, out.AllPass, "output: %s", out.Output)

	reversed := `
def two_sum(nums, target):
    for i in range(len(nums)):
        for j in range(i + 1, len(nums)):
            if nums[i] + nums[j] == target:
                return [j, i]
    return []
`
	out = buildAndRun(t, 1, reversed)
	assert.True(t, out.AllPass, "reversed index order must also pass")
}

func TestTwoSumWrongIndicesFail(t *testing.T) {
	out := buildAndRun(t, 1, "def two_sum(nums, target):\n    return [1, 2]\n")
	assert.False(t, out.AllPass)
	require.NotEmpty(t, out.Tests)
	// [1, 2] happens to be right for the second vector but wrong for the first
	assert.Equal(t, model.VerdictFail, out.Tests[0].Verdict)
}

func TestCrashingTestDoesNotAbortTheRest(t *testing.T) {
	src := `
def binary_search(nums, target):
    if target == 2:
        raise RuntimeError("boom")
    lo, hi = 0, len(nums) - 1
    while lo <= hi:
        mid = (lo + hi) // 2
        if nums[mid] == target:
            return mid
        if nums[mid] < target:
            lo = mid + 1
        else:
            hi = mid - 1
    return -1
`
	out := buildAndRun(t, 2, src)
	assert.False(t, out.AllPass)
	require.Len(t, out.Tests, 3, "every vector gets a verdict even after a crash")
	assert.Equal(t, model.VerdictPass, out.Tests[0].Verdict)
	assert.Equal(t, model.VerdictError, out.Tests[1].Verdict)
	assert.Equal(t, model.VerdictPass, out.Tests[2].Verdict)
	assert.Contains(t, out.Tests[1].Detail, "boom")
}

// A truthy non-boolean return no longer passes palindrome tests; strict
// boolean comparison replaced the original's lenient fallback.
func TestPalindromeRejectsTruthyNonBoolean(t *testing.T) {
	out := buildAndRun(t, 4, "def is_palindrome(s):\n    return 'yes'\n")
	assert.False(t, out.AllPass)
	for _, tr := range out.Tests {
		assert.Equal(t, model.VerdictFail, tr.Verdict)
	}
}

func TestInfiniteLoopTimesOut(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := sandbox.NewRunner("python3", 500*time.Millisecond, logger)
	b := harness.NewBuilder(catalog.New())
	script, err := b.Build(5, "def is_valid(s):\n    while True:\n        pass\n")
	require.NoError(t, err)

	out := r.Run(context.Background(), script)
	assert.True(t, out.TimedOut)
	assert.False(t, out.AllPass)
}
