// Package conditions attaches settlement conditions and expiry windows to a
// built transfer chain.
package conditions

import (
	"time"

	"github.com/hopchain/hopchain/chain"
	"github.com/hopchain/hopchain/types"
)

// Params selects the settlement mode. Exactly two implementations exist:
// AtomicParams and UniversalParams.
type Params interface {
	validate() error
}

// AtomicParams configures notary-mediated all-or-nothing settlement. Every
// transfer gets both conditions and the case id; no per-transfer expiry is
// computed because the case's timeout model replaces it.
type AtomicParams struct {
	Execution    types.Condition
	Cancellation types.Condition
	CaseID       string
}

func (p AtomicParams) validate() error {
	if p.Execution == "" || p.Cancellation == "" || p.CaseID == "" {
		return &types.Error{
			Code:    types.ErrConfigError,
			Message: "atomic mode requires execution condition, cancellation condition and case id",
		}
	}
	return nil
}

// UniversalParams configures expiry-window settlement. Every transfer gets
// the shared execution condition and an expiry derived from Now.
type UniversalParams struct {
	Execution types.Condition

	// Now is the single reference instant for all expiry computation. It is
	// captured once so source and destination expiries stay consistent
	// relative to the same instant; re-deriving the time per transfer risks
	// breaching the minimum message-propagation window.
	Now time.Time

	Policy ExpiryPolicy
}

func (p UniversalParams) validate() error {
	if p.Execution == "" {
		return &types.Error{
			Code:    types.ErrConfigError,
			Message: "universal mode requires an execution condition",
		}
	}
	if p.Policy == nil {
		return &types.Error{
			Code:    types.ErrConfigError,
			Message: "universal mode requires an expiry policy",
		}
	}
	return nil
}

// ExpiryPolicy derives a transfer's expiry from the captured reference
// instant and its position in the chain.
type ExpiryPolicy interface {
	ExpiresAt(now time.Time, final bool) time.Time
}

// WindowPolicy is the default expiry policy. The final transfer anchors the
// chain's overall timeout at now+ExecutionWindow; every earlier transfer
// expires one MinMessageWindow later so that settlement notifications have
// time to propagate upstream before the hop times out.
type WindowPolicy struct {
	ExecutionWindow  time.Duration
	MinMessageWindow time.Duration
}

func (p WindowPolicy) ExpiresAt(now time.Time, final bool) time.Time {
	if final {
		return now.Add(p.ExecutionWindow)
	}
	return now.Add(p.ExecutionWindow + p.MinMessageWindow)
}

// Authorizer approves the chain's first transfer on behalf of the source
// account holder.
type Authorizer func(first *types.Transfer)

// AuthorizeFirstDebit is the default Authorizer. It marks the first debit
// authorized without any verification; real deployments replace it with a
// step that collects genuine user authorization.
func AuthorizeFirstDebit(first *types.Transfer) {
	if len(first.Debits) > 0 {
		first.Debits[0].Authorized = true
	}
}

// Attach applies the mode's conditions to every transfer in the chain and
// authorizes the first debit with the default Authorizer. Attaching twice
// with identical params overwrites with identical values.
func Attach(c *chain.Chain, params Params) error {
	return AttachWith(c, params, AuthorizeFirstDebit)
}

// AttachWith is Attach with a caller-supplied authorization step.
func AttachWith(c *chain.Chain, params Params, authorize Authorizer) error {
	if err := params.validate(); err != nil {
		return err
	}

	transfers := c.Transfers()
	switch p := params.(type) {
	case AtomicParams:
		for _, t := range transfers {
			t.ExecutionCondition = p.Execution
			t.CancellationCondition = p.Cancellation
			t.Info().Cases = []string{p.CaseID}
			t.ExpiresAt = nil
		}
	case UniversalParams:
		now := p.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		for i, t := range transfers {
			t.ExecutionCondition = p.Execution
			t.CancellationCondition = ""
			t.Info().Cases = nil
			expires := p.Policy.ExpiresAt(now, i == len(transfers)-1)
			t.ExpiresAt = &expires
		}
	}

	if authorize != nil {
		authorize(c.First())
	}
	return nil
}
