package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Condition is an opaque crypto-condition gating transfer settlement or
// rollback. The library never inspects its contents.
type Condition string

// TransferStage represents the lifecycle stage of a transfer on its ledger.
type TransferStage string

const (
	StageProposed TransferStage = "proposed"
	StagePrepared TransferStage = "prepared"
	StageExecuted TransferStage = "executed"
	StageRejected TransferStage = "rejected"
)

// Debit is one funding leg of a transfer.
type Debit struct {
	Account string          `json:"account" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`

	// Authorized marks the debit as approved by the account holder. This is
	// set by a pluggable authorization step, not verified by this library.
	Authorized bool `json:"authorized,omitempty"`
}

// Credit is one receiving leg of a transfer.
type Credit struct {
	Account string          `json:"account" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// AdditionalInfo carries transfer metadata that the ledger stores but does
// not interpret.
type AdditionalInfo struct {
	// PartOfPayment is a back-reference to the payment that owns this
	// transfer in the chain.
	PartOfPayment string `json:"part_of_payment,omitempty"`

	// Cases lists the notary cases coordinating this transfer. At most one
	// case is attached in atomic mode.
	Cases []string `json:"cases,omitempty"`
}

// Transfer is a unit of value movement on a single ledger.
type Transfer struct {
	// ID is the ledger-scoped resource URI, assigned when the transfer is
	// created in memory.
	ID     string `json:"id,omitempty"`
	Ledger string `json:"ledger" validate:"required"`

	Debits  []Debit  `json:"debits" validate:"min=1,dive"`
	Credits []Credit `json:"credits" validate:"min=1,dive"`

	ExecutionCondition    Condition  `json:"execution_condition,omitempty"`
	CancellationCondition Condition  `json:"cancellation_condition,omitempty"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`

	AdditionalInfo *AdditionalInfo `json:"additional_info,omitempty"`

	// State holds the remote-assigned state returned by the ledger after
	// submission. Nil until the transfer has been proposed.
	State *TransferState `json:"state,omitempty"`
}

// Info returns the transfer's additional info, allocating it on first use.
func (t *Transfer) Info() *AdditionalInfo {
	if t.AdditionalInfo == nil {
		t.AdditionalInfo = &AdditionalInfo{}
	}
	return t.AdditionalInfo
}

// TransferState is the ledger's signed view of a transfer's current stage.
type TransferState struct {
	Stage     TransferStage `json:"stage"`
	Type      string        `json:"type,omitempty"`
	Signature string        `json:"signature,omitempty"`
}

// Fulfillment extracts the proof of fulfillment from a settled state.
func (s *TransferState) Fulfillment() *Fulfillment {
	return &Fulfillment{Type: s.Type, Signature: s.Signature}
}

// Payment is a single-hop value transfer request. A well-formed payment has
// exactly one source transfer and exactly one destination transfer.
type Payment struct {
	ID                   string      `json:"id" validate:"required"`
	SourceTransfers      []*Transfer `json:"source_transfers" validate:"len=1"`
	DestinationTransfers []*Transfer `json:"destination_transfers" validate:"len=1"`

	AdditionalInfo map[string]interface{} `json:"additional_info,omitempty"`
}

// CaseStateProposed is the initial state of a freshly created notary case.
const CaseStateProposed = "proposed"

// NotaryRef identifies one notary arbitrating a case.
type NotaryRef struct {
	URL string `json:"url"`
}

// Case is a notary-held record coordinating atomic fulfillment across a
// transfer chain.
type Case struct {
	ID                 string      `json:"id"`
	State              string      `json:"state"`
	ExecutionCondition Condition   `json:"execution_condition"`
	ExpiresAt          time.Time   `json:"expires_at"`
	Notaries           []NotaryRef `json:"notaries"`

	// NotificationTargets holds one fulfillment-notification URI per
	// transfer in the chain, in chain order.
	NotificationTargets []string `json:"notification_targets"`
}

// Fulfillment is the proof that an execution condition was met.
type Fulfillment struct {
	Type      string `json:"type"`
	Signature string `json:"signature"`
}

// Credentials are the source account's basic-auth credentials, used only
// when proposing the first transfer of a chain.
type Credentials struct {
	Username string
	Password string
}

// Config contains global configuration for the library.
type Config struct {
	// DefaultTimeout bounds every individual remote call.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty"`

	// ExecutionWindow is how long the final transfer of a universal-mode
	// chain stays executable, measured from the instant conditions are
	// attached. It also anchors the default case expiry in atomic mode.
	ExecutionWindow time.Duration `json:"executionWindow,omitempty"`

	// MinMessageWindow is the minimum inter-ledger message propagation
	// window. Each non-final transfer expires this much later than the
	// final one so that notifications have time to travel upstream.
	MinMessageWindow time.Duration `json:"minMessageWindow,omitempty"`

	// PollAttempts and PollInterval bound the transfer-state poller.
	PollAttempts int           `json:"pollAttempts,omitempty"`
	PollInterval time.Duration `json:"pollInterval,omitempty"`

	LogLevel      string `json:"logLevel,omitempty"`
	EnableMetrics bool   `json:"enableMetrics,omitempty"`
}
