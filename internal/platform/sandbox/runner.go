package sandbox

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"codeduel/internal/domain/model"
)

// Runner executes a generated harness script in a separate OS process. The
// only isolation is the wall-clock timeout; timeouts and launch faults come
// back as failed outcomes, never as errors, so a broken submission can never
// take the server down with it.
type Runner struct {
	bin     string
	timeout time.Duration
	logger  *slog.Logger
}

func NewRunner(bin string, timeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{bin: bin, timeout: timeout, logger: logger}
}

func (r *Runner) Run(ctx context.Context, script string) model.ExecutionOutcome {
	tmp, err := os.CreateTemp("", "codeduel-*.py")
	if err != nil {
		return faultOutcome("Error: " + err.Error())
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return faultOutcome("Error: " + err.Error())
	}
	if err := tmp.Close(); err != nil {
		return faultOutcome("Error: " + err.Error())
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var buf bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.bin, path)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	// Children of a killed script can keep the output pipe open; don't let
	// them hold Run past the deadline.
	cmd.WaitDelay = time.Second

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		r.logger.Warn("execution timed out", "timeout", r.timeout)
		return model.ExecutionOutcome{
			Output:   "Error: code execution timed out",
			TimedOut: true,
		}
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		// The process never ran (interpreter missing, fork failure).
		r.logger.Error("failed to launch harness", "err", runErr)
		return faultOutcome("Error: " + runErr.Error())
	}

	// A non-zero exit (syntax error, top-level crash) still carries useful
	// output: the traceback is the transcript and no records were emitted,
	// so the outcome classifies as failed.
	outcome := Classify(buf.String())
	r.logger.Debug("harness executed",
		"duration_ms", duration.Milliseconds(),
		"tests", len(outcome.Tests),
		"all_pass", outcome.AllPass)
	return outcome
}

func faultOutcome(msg string) model.ExecutionOutcome {
	return model.ExecutionOutcome{Output: msg}
}
