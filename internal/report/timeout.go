package report

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout is the wall-clock budget for one AI analysis call.
const DefaultTimeout = 90 * time.Second

// TimeoutGuard races a task against a fixed deadline. The underlying AI
// client is not assumed to support cancellation, so the losing task keeps
// running in the background; its eventual result is drained into a buffered
// channel and discarded rather than resurfacing after the timeout outcome has
// been returned.
type TimeoutGuard struct{}

func NewTimeoutGuard() *TimeoutGuard {
	return &TimeoutGuard{}
}

// Run executes task and returns its result, or ErrAITimeout if the budget
// elapses first.
func (g *TimeoutGuard) Run(ctx context.Context, budget time.Duration, task func(context.Context) (string, error)) (string, error) {
	if budget <= 0 {
		budget = DefaultTimeout
	}
	type outcome struct {
		text string
		err  error
	}
	// Buffered so the loser can always deliver and exit.
	results := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- outcome{err: fmt.Errorf("ai task panicked: %v", r)}
			}
		}()
		text, err := task(context.WithoutCancel(ctx))
		results <- outcome{text: text, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()
	select {
	case res := <-results:
		return res.text, res.err
	case <-timer.C:
		return "", ErrAITimeout
	}
}
