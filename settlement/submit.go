// Package settlement drives a built transfer chain through the remote
// ledgers and, in atomic mode, through the notary.
package settlement

import (
	"context"
	"time"

	"github.com/hopchain/hopchain/chain"
	"github.com/hopchain/hopchain/clients"
	"github.com/hopchain/hopchain/logger"
	"github.com/hopchain/hopchain/metrics"
	"github.com/hopchain/hopchain/types"
	"github.com/hopchain/hopchain/utils"
)

// Service submits transfers and payments along a chain, strictly ordered
// first-to-last. Each ledger transfer's authorization may depend on the
// preceding transfer's existence, so ordering is a hard requirement.
type Service struct {
	ledger  clients.LedgerClient
	log     logger.Logger
	metrics metrics.Recorder
	timeout time.Duration
}

// NewService creates a submission service bound to a ledger client.
func NewService(ledger clients.LedgerClient, log logger.Logger, rec metrics.Recorder, timeout time.Duration) *Service {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Service{
		ledger:  ledger,
		log:     log,
		metrics: rec,
		timeout: timeout,
	}
}

// SubmitTransfers proposes each transfer on its ledger in chain order. The
// first transfer carries the source credentials; the rest are proposed
// without. Each ledger response is stored as that transfer's state. The
// first failure aborts the walk; earlier transfers remain in whatever state
// their ledgers recorded.
func (s *Service) SubmitTransfers(ctx context.Context, c *chain.Chain, creds *types.Credentials) error {
	for i, t := range c.Transfers() {
		if err := utils.ValidateTransfer(t); err != nil {
			return err
		}

		var transferCreds *types.Credentials
		if i == 0 {
			transferCreds = creds
		}

		started := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		state, err := s.ledger.CreateTransfer(callCtx, t, transferCreds)
		cancel()
		if err != nil {
			s.log.Error("transfer submission failed", map[string]any{
				"transfer": t.ID,
				"ledger":   t.Ledger,
				"error":    err.Error(),
			})
			s.metrics.IncCounter(clients.EventRemoteErrorStatus, map[string]string{"ledger": t.Ledger})
			return err
		}

		t.State = state
		s.log.Debug("transfer proposed", map[string]any{
			"transfer": t.ID,
			"ledger":   t.Ledger,
			"stage":    string(state.Stage),
		})
		s.metrics.IncCounter(clients.EventTransferProposed, map[string]string{"ledger": t.Ledger})
		s.metrics.ObserveLatency("create_transfer", time.Since(started), map[string]string{"ledger": t.Ledger})
	}
	return nil
}

// SubmitPayments upserts each payment document in chain order. The ledger
// response's destination transfer is written back into the chain at every
// position holding that transfer id, which updates both the producing and
// the consuming payment's view of the shared hop.
func (s *Service) SubmitPayments(ctx context.Context, c *chain.Chain) error {
	for _, p := range c.Payments() {
		started := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		resp, err := s.ledger.CreatePayment(callCtx, p)
		cancel()
		if err != nil {
			s.log.Error("payment submission failed", map[string]any{
				"payment": p.ID,
				"error":   err.Error(),
			})
			return err
		}

		if resp != nil && len(resp.DestinationTransfers) == 1 {
			dst := resp.DestinationTransfers[0]
			if idx := c.IndexOf(dst.ID); idx >= 0 {
				c.Apply(idx, dst)
			}
		}

		ledger := p.SourceTransfers[0].Ledger
		s.log.Debug("payment submitted", map[string]any{"payment": p.ID})
		s.metrics.IncCounter(clients.EventPaymentSubmitted, map[string]string{"ledger": ledger})
		s.metrics.ObserveLatency("create_payment", time.Since(started), map[string]string{"ledger": ledger})
	}
	return nil
}
