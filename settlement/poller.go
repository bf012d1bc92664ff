package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/hopchain/hopchain/clients"
	"github.com/hopchain/hopchain/types"
)

const (
	// DefaultPollAttempts and DefaultPollInterval define the fixed retry
	// policy for observing remote state transitions. No backoff, no jitter.
	DefaultPollAttempts = 5
	DefaultPollInterval = 1000 * time.Millisecond
)

// StateTimeoutError is returned when the poller exhausts its retry budget
// without observing the target state.
type StateTimeoutError struct {
	TransferID string
	Target     types.TransferStage
	Attempts   int
}

func (e *StateTimeoutError) Error() string {
	return fmt.Sprintf("transfer %s did not reach state %q after %d attempts", e.TransferID, e.Target, e.Attempts)
}

// Poller observes a transfer's remote state with a fixed-count,
// fixed-interval retry policy.
type Poller struct {
	ledger   clients.LedgerClient
	attempts int
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller. Non-positive attempts or interval fall back
// to the defaults.
func NewPoller(ledger clients.LedgerClient, attempts int, interval time.Duration) *Poller {
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		ledger:   ledger,
		attempts: attempts,
		interval: interval,
		sleep:    sleepContext,
	}
}

// WaitForState polls the transfer's remote state until it matches target,
// sleeping one interval between attempts. It returns the first matching
// observation, a StateTimeoutError once the attempt budget is exhausted, or
// the context's error if the caller cancels the wait.
func (p *Poller) WaitForState(ctx context.Context, transferID string, target types.TransferStage) (*types.TransferState, error) {
	for attempt := 1; attempt <= p.attempts; attempt++ {
		state, err := p.ledger.GetTransferState(ctx, transferID)
		if err != nil {
			return nil, err
		}
		if state.Stage == target {
			return state, nil
		}

		if attempt < p.attempts {
			if err := p.sleep(ctx, p.interval); err != nil {
				return nil, err
			}
		}
	}

	return nil, &StateTimeoutError{
		TransferID: transferID,
		Target:     target,
		Attempts:   p.attempts,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
