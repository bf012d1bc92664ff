// Package clients provides the HTTP clients for the remote collaborators:
// the ledgers holding transfers and payments, and the notary holding cases.
package clients

import (
	"context"
	"net/http"

	"github.com/hopchain/hopchain/types"
)

// Doer executes a single HTTP request. The default is an *http.Client;
// callers inject their own to add TLS, auth headers or instrumentation.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LedgerClient drives a ledger's transfer and payment resources.
type LedgerClient interface {
	// CreateTransfer proposes the transfer on its ledger. Credentials are
	// only supplied for the first transfer of a chain; the ledger infers
	// authorization for later hops from chain linkage. The returned state
	// is the ledger's record of the created transfer.
	CreateTransfer(ctx context.Context, transfer *types.Transfer, creds *types.Credentials) (*types.TransferState, error)

	// GetTransferState fetches the transfer's current signed state.
	GetTransferState(ctx context.Context, transferID string) (*types.TransferState, error)

	// CreatePayment upserts the full payment document at its own endpoint
	// and returns the (possibly state-enriched) payment.
	CreatePayment(ctx context.Context, payment *types.Payment) (*types.Payment, error)
}

// NotaryClient drives a notary's case resource.
type NotaryClient interface {
	// CreateCase registers the case with the notary.
	CreateCase(ctx context.Context, c *types.Case) error

	// SubmitFulfillment posts the proof of fulfillment to the case.
	SubmitFulfillment(ctx context.Context, caseID string, f *types.Fulfillment) error
}
