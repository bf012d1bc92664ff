// Package hopchain coordinates multi-hop conditional payments across a
// chain of independent ledgers, with an optional third-party notary
// arbitrating atomic settlement.
package hopchain

import (
	"context"
	"time"

	"github.com/hopchain/hopchain/chain"
	"github.com/hopchain/hopchain/clients"
	"github.com/hopchain/hopchain/conditions"
	"github.com/hopchain/hopchain/logger"
	"github.com/hopchain/hopchain/metrics"
	"github.com/hopchain/hopchain/settlement"
	"github.com/hopchain/hopchain/types"
	"github.com/hopchain/hopchain/utils"
)

// Sender is the main entry point. It builds a payment chain, attaches
// settlement conditions, drives the chain through each ledger in order and,
// in atomic mode, coordinates the notary case.
type Sender struct {
	config  *types.Config
	ledger  clients.LedgerClient
	notary  clients.NotaryClient
	log     logger.Logger
	metrics metrics.Recorder
	httpc   clients.Doer
	clock   func() time.Time

	submitter   *settlement.Service
	coordinator *settlement.Coordinator
	poller      *settlement.Poller
}

// New creates a Sender with the given configuration and options.
func New(config *types.Config, opts ...Option) *Sender {
	if config == nil {
		config = &types.Config{}
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = 30 * time.Second
	}
	if config.ExecutionWindow <= 0 {
		config.ExecutionWindow = time.Minute
	}
	if config.MinMessageWindow <= 0 {
		config.MinMessageWindow = time.Second
	}
	if config.PollAttempts <= 0 {
		config.PollAttempts = settlement.DefaultPollAttempts
	}
	if config.PollInterval <= 0 {
		config.PollInterval = settlement.DefaultPollInterval
	}

	s := &Sender{
		config: config,
		log:    logger.NoopLogger{},
		clock:  time.Now,
	}
	if config.EnableMetrics {
		s.metrics = metrics.NewPrometheusRecorder()
	} else {
		s.metrics = metrics.NoopRecorder{}
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.ledger == nil {
		s.ledger = clients.NewHTTPLedger(s.httpc)
	}
	if s.notary == nil {
		s.notary = clients.NewHTTPNotary(s.httpc)
	}

	s.submitter = settlement.NewService(s.ledger, s.log, s.metrics, config.DefaultTimeout)
	s.poller = settlement.NewPoller(s.ledger, config.PollAttempts, config.PollInterval)
	s.coordinator = settlement.NewCoordinator(s.notary, s.poller, s.log, s.metrics)

	return s
}

// NewWithDefaults creates a Sender with default configuration.
func NewWithDefaults(opts ...Option) *Sender {
	return New(&types.Config{
		DefaultTimeout:   30 * time.Second,
		ExecutionWindow:  time.Minute,
		MinMessageWindow: time.Second,
		PollAttempts:     settlement.DefaultPollAttempts,
		PollInterval:     settlement.DefaultPollInterval,
		LogLevel:         "info",
		EnableMetrics:    false,
	}, opts...)
}

// ChainRequest carries the inputs shared by both settlement modes.
type ChainRequest struct {
	// Payments is the ordered one-to-one payment sequence to link.
	Payments []*types.Payment

	// SourceAccount funds the first debit of the chain.
	SourceAccount string

	// Credentials authenticate the first transfer's proposal.
	Credentials *types.Credentials
}

// UniversalRequest configures expiry-window settlement.
type UniversalRequest struct {
	ChainRequest
	ExecutionCondition types.Condition
}

// AtomicRequest configures notary-mediated all-or-nothing settlement.
type AtomicRequest struct {
	ChainRequest
	ExecutionCondition    types.Condition
	CancellationCondition types.Condition

	// Notary is the base URI of the notary service.
	Notary string

	// CaseExpiresAt bounds the case. Zero means now+ExecutionWindow.
	CaseExpiresAt time.Time
}

// BuildChain validates the payment documents and links them into a transfer
// chain.
func (s *Sender) BuildChain(payments []*types.Payment, sourceAccount string) (*chain.Chain, error) {
	for _, p := range payments {
		if err := utils.ValidatePayment(p); err != nil {
			return nil, err
		}
	}

	c, err := chain.Build(payments, sourceAccount)
	if err != nil {
		return nil, err
	}

	s.log.Debug("transfer chain built", map[string]any{
		"payments":  len(payments),
		"transfers": c.Len(),
	})
	return c, nil
}

// SetupConditions attaches the mode's conditions to every transfer in the
// chain.
func (s *Sender) SetupConditions(c *chain.Chain, params conditions.Params) error {
	return conditions.Attach(c, params)
}

// SubmitTransfers proposes each transfer on its ledger in chain order.
func (s *Sender) SubmitTransfers(ctx context.Context, c *chain.Chain, creds *types.Credentials) error {
	return s.submitter.SubmitTransfers(ctx, c, creds)
}

// SubmitPayments upserts each payment document in chain order.
func (s *Sender) SubmitPayments(ctx context.Context, c *chain.Chain) error {
	return s.submitter.SubmitPayments(ctx, c)
}

// SetupCase registers a notary case covering the chain's transfers and
// returns its id.
func (s *Sender) SetupCase(ctx context.Context, notaryURL string, execCondition types.Condition, c *chain.Chain, expiresAt time.Time) (string, error) {
	return s.coordinator.SetupCase(ctx, notaryURL, execCondition, c.Transfers(), expiresAt)
}

// PostFulfillment waits for the final transfer to be prepared and forwards
// the proof of fulfillment to the case.
func (s *Sender) PostFulfillment(ctx context.Context, finalTransfer *types.Transfer, caseID string) error {
	return s.coordinator.PostFulfillment(ctx, finalTransfer, caseID)
}

// CaseState reports the notary coordinator's lifecycle state.
func (s *Sender) CaseState() settlement.CaseState {
	return s.coordinator.State()
}

// SendUniversal executes the full expiry-window pipeline: build, attach
// conditions, submit transfers, submit payments.
func (s *Sender) SendUniversal(ctx context.Context, req *UniversalRequest) (*chain.Chain, error) {
	c, err := s.BuildChain(req.Payments, req.SourceAccount)
	if err != nil {
		return nil, err
	}

	// one reference instant for every expiry in the chain
	now := s.clock().UTC()
	err = conditions.Attach(c, conditions.UniversalParams{
		Execution: req.ExecutionCondition,
		Now:       now,
		Policy: conditions.WindowPolicy{
			ExecutionWindow:  s.config.ExecutionWindow,
			MinMessageWindow: s.config.MinMessageWindow,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.submitter.SubmitTransfers(ctx, c, req.Credentials); err != nil {
		return nil, err
	}
	if err := s.submitter.SubmitPayments(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SendAtomic executes the full notary-mediated pipeline: build, register
// the case, attach conditions, submit transfers, submit payments, then
// await the final transfer and post the fulfillment.
func (s *Sender) SendAtomic(ctx context.Context, req *AtomicRequest) (*chain.Chain, error) {
	c, err := s.BuildChain(req.Payments, req.SourceAccount)
	if err != nil {
		return nil, err
	}

	expiresAt := req.CaseExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.clock().UTC().Add(s.config.ExecutionWindow)
	}

	caseID, err := s.coordinator.SetupCase(ctx, req.Notary, req.ExecutionCondition, c.Transfers(), expiresAt)
	if err != nil {
		return nil, err
	}

	err = conditions.Attach(c, conditions.AtomicParams{
		Execution:    req.ExecutionCondition,
		Cancellation: req.CancellationCondition,
		CaseID:       caseID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.submitter.SubmitTransfers(ctx, c, req.Credentials); err != nil {
		return nil, err
	}
	if err := s.submitter.SubmitPayments(ctx, c); err != nil {
		return nil, err
	}

	if err := s.coordinator.PostFulfillment(ctx, c.Final(), caseID); err != nil {
		return nil, err
	}
	return c, nil
}

// Version information
const (
	Version = "1.0.0"
)
