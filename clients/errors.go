package clients

import "fmt"

// Kind identifies which remote collaborator produced an error.
type Kind string

const (
	KindLedger Kind = "ledger"
	KindNotary Kind = "notary"
)

// RemoteError is a non-success HTTP response from a ledger or notary. It
// carries the status code and response body and is never retried by this
// library.
type RemoteError struct {
	Kind       Kind
	Resource   string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s error, status code %d: %s (%s)", e.Kind, e.StatusCode, e.Body, e.Resource)
}

// Event names recorded against the metrics recorder.
const (
	EventTransferProposed  = "transfer_proposed"
	EventPaymentSubmitted  = "payment_submitted"
	EventCaseCreated       = "case_created"
	EventFulfillmentPosted = "fulfillment_posted"
	EventStatePollTimeout  = "state_poll_timeout"
	EventRemoteErrorStatus = "remote_error_status"
)
