package settlement

import (
	"context"
	"time"

	"github.com/hopchain/hopchain/clients"
	"github.com/hopchain/hopchain/logger"
	"github.com/hopchain/hopchain/metrics"
	"github.com/hopchain/hopchain/types"
	"github.com/hopchain/hopchain/utils"
)

// CaseState tracks the coordinator's progress through a case's lifecycle.
type CaseState string

const (
	CaseStateNone      CaseState = "no_case"
	CaseStateProposed  CaseState = "case_proposed"
	CaseStateFulfilled CaseState = "fulfillment_posted"
)

// Coordinator arbitrates atomic settlement through a notary case. It moves
// strictly no_case -> case_proposed -> fulfillment_posted; the case is
// created once and mutated exactly once by the fulfillment submission.
type Coordinator struct {
	notary  clients.NotaryClient
	poller  *Poller
	log     logger.Logger
	metrics metrics.Recorder

	state CaseState
}

// NewCoordinator creates a coordinator bound to a notary client and a
// transfer-state poller.
func NewCoordinator(notary clients.NotaryClient, poller *Poller, log logger.Logger, rec metrics.Recorder) *Coordinator {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Coordinator{
		notary:  notary,
		poller:  poller,
		log:     log,
		metrics: rec,
		state:   CaseStateNone,
	}
}

// State reports the coordinator's current lifecycle state.
func (c *Coordinator) State() CaseState {
	return c.state
}

// SetupCase generates a fresh case id under the notary's namespace and
// registers a proposed case naming one fulfillment-notification target per
// transfer, in chain order. It returns the case id for condition
// attachment.
func (c *Coordinator) SetupCase(ctx context.Context, notaryURL string, execCondition types.Condition, transfers []*types.Transfer, expiresAt time.Time) (string, error) {
	caseID := utils.ResourceURI(notaryURL, "cases")

	targets := make([]string, len(transfers))
	for i, t := range transfers {
		targets[i] = t.ID + "/fulfillment"
	}

	notaryCase := &types.Case{
		ID:                  caseID,
		State:               types.CaseStateProposed,
		ExecutionCondition:  execCondition,
		ExpiresAt:           expiresAt,
		Notaries:            []types.NotaryRef{{URL: notaryURL}},
		NotificationTargets: targets,
	}

	if err := c.notary.CreateCase(ctx, notaryCase); err != nil {
		c.log.Error("case creation failed", map[string]any{
			"case":   caseID,
			"notary": notaryURL,
			"error":  err.Error(),
		})
		return "", err
	}

	c.state = CaseStateProposed
	c.log.Info("case proposed", map[string]any{
		"case":      caseID,
		"transfers": len(transfers),
	})
	c.metrics.IncCounter(clients.EventCaseCreated, map[string]string{"ledger": notaryURL})
	return caseID, nil
}

// PostFulfillment waits for the final transfer to reach the prepared stage
// and then submits the observed proof of fulfillment to the case. A poller
// timeout is propagated unchanged.
func (c *Coordinator) PostFulfillment(ctx context.Context, finalTransfer *types.Transfer, caseID string) error {
	state, err := c.poller.WaitForState(ctx, finalTransfer.ID, types.StagePrepared)
	if err != nil {
		if _, ok := err.(*StateTimeoutError); ok {
			c.metrics.IncCounter(clients.EventStatePollTimeout, map[string]string{"ledger": finalTransfer.Ledger})
		}
		return err
	}

	if err := c.notary.SubmitFulfillment(ctx, caseID, state.Fulfillment()); err != nil {
		return err
	}

	c.state = CaseStateFulfilled
	c.log.Info("fulfillment posted", map[string]any{
		"case":     caseID,
		"transfer": finalTransfer.ID,
	})
	c.metrics.IncCounter(clients.EventFulfillmentPosted, map[string]string{"ledger": finalTransfer.Ledger})
	return nil
}
