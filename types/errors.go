package types

// Error is the library's structured error type.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrInvalidPaymentShape = "INVALID_PAYMENT_SHAPE"
	ErrInvalidDocument     = "INVALID_DOCUMENT"
	ErrConfigError         = "CONFIG_ERROR"
	ErrRemoteLedger        = "REMOTE_LEDGER_ERROR"
	ErrRemoteNotary        = "REMOTE_NOTARY_ERROR"
	ErrStateTimeout        = "TRANSFER_STATE_TIMEOUT"
)
