package avr

import (
	"context"
	"log"
	"time"
)

// DefaultMaxAttempts is the total number of tries for retried commands
// (one initial attempt plus three retries).
const DefaultMaxAttempts = 4

// DefaultRetryDelay is the pause between attempts.
const DefaultRetryDelay = time.Second

// Action issues one command to the device session. It returns (false, nil)
// when the device dropped or ignored the command and a non-nil error for a
// structural fault. The session's internal acknowledgement wait happens
// inside the call; the executor only counts repetitions and delays.
type Action func(ctx context.Context) (accepted bool, err error)

// Executor repeats a command until the device accepts it or the attempt
// budget runs out. Retries exist solely to absorb commands lost on an
// unreliable half-duplex control channel; faults from the session are not
// the kind of loss retries cover and fail fast.
type Executor struct {
	logger      *log.Logger
	maxAttempts int
	retryDelay  time.Duration
}

// NewExecutor creates an Executor. Zero maxAttempts or retryDelay fall back
// to the defaults.
func NewExecutor(logger *log.Logger, maxAttempts int, retryDelay time.Duration) *Executor {
	if logger == nil {
		logger = log.Default()
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Executor{logger: logger, maxAttempts: maxAttempts, retryDelay: retryDelay}
}

// Execute runs action up to the attempt budget. With retry=false at most
// one attempt is made regardless of the result - used for incremental
// commands (volume steps) where a lost step self-corrects on the next user
// action and a stacked retry would double-step.
//
// Attempts are strictly sequential; attempt k+1 never starts before the
// inter-attempt delay after attempt k has elapsed. Context cancellation
// aborts the delay and surfaces as a rejection.
func (e *Executor) Execute(ctx context.Context, name string, action Action, retry bool) (Outcome, error) {
	attempts := e.maxAttempts
	if !retry {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		accepted, err := action(ctx)
		if err != nil {
			return OutcomeRejected, &RejectedError{Command: name, Cause: err}
		}
		if accepted {
			return OutcomeConfirmed, nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(e.retryDelay):
		case <-ctx.Done():
			return OutcomeRejected, &RejectedError{Command: name, Cause: ctx.Err()}
		}
		e.logger.Printf("repeating failed command (%d): %s", attempt, name)
	}

	if !retry {
		// Single-shot commands report non-acceptance without the retry
		// framing; the next user action supersedes the lost step.
		return OutcomeExhausted, &ExhaustedError{Command: name, Attempts: 1}
	}
	return OutcomeExhausted, &ExhaustedError{Command: name, Attempts: attempts}
}
