package worker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"codeduel/internal/domain/model"
)

// Runner is the sandbox behind the pool.
type Runner interface {
	Run(ctx context.Context, script string) model.ExecutionOutcome
}

// ExecutionPool bounds how many sandbox processes run at once. Every
// submission spawns one OS process and blocks its caller for up to the
// execution timeout, so an unbounded fan-out under load would exhaust
// process slots; the weighted semaphore caps it.
type ExecutionPool struct {
	runner Runner
	sem    *semaphore.Weighted
	logger *slog.Logger
}

func NewExecutionPool(runner Runner, maxConcurrent int64, logger *slog.Logger) *ExecutionPool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &ExecutionPool{
		runner: runner,
		sem:    semaphore.NewWeighted(maxConcurrent),
		logger: logger,
	}
}

// Execute runs the script once a slot is free. A canceled context while
// waiting surfaces as a failed outcome, consistent with the runner's
// never-error contract.
func (p *ExecutionPool) Execute(ctx context.Context, script string) model.ExecutionOutcome {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		p.logger.Warn("execution slot acquire failed", "err", err)
		return model.ExecutionOutcome{Output: "Error: " + err.Error()}
	}
	defer p.sem.Release(1)
	return p.runner.Run(ctx, script)
}
