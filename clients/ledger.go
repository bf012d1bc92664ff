package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hopchain/hopchain/types"
)

// HTTPLedger is the LedgerClient over plain HTTP/JSON resources.
type HTTPLedger struct {
	http Doer
}

// NewHTTPLedger creates a ledger client. A nil doer falls back to
// http.DefaultClient.
func NewHTTPLedger(doer Doer) *HTTPLedger {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &HTTPLedger{http: doer}
}

// CreateTransfer proposes the transfer via PUT on its resource URI.
func (l *HTTPLedger) CreateTransfer(ctx context.Context, transfer *types.Transfer, creds *types.Credentials) (*types.TransferState, error) {
	var state types.TransferState
	if err := l.put(ctx, transfer.ID, transfer, creds, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetTransferState fetches the transfer's current signed state.
func (l *HTTPLedger) GetTransferState(ctx context.Context, transferID string) (*types.TransferState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transferID+"/state", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build state request: %w", err)
	}

	var state types.TransferState
	if err := l.do(req, transferID+"/state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// CreatePayment upserts the payment document at its own endpoint.
func (l *HTTPLedger) CreatePayment(ctx context.Context, payment *types.Payment) (*types.Payment, error) {
	var out types.Payment
	if err := l.put(ctx, payment.ID, payment, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *HTTPLedger) put(ctx context.Context, uri string, doc interface{}, creds *types.Credentials, out interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document for %s: %w", uri, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uri, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", uri, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if creds != nil {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	return l.do(req, uri, out)
}

func (l *HTTPLedger) do(req *http.Request, uri string, out interface{}) error {
	resp, err := l.http.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request to %s failed: %w", uri, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read ledger response from %s: %w", uri, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &RemoteError{
			Kind:       KindLedger,
			Resource:   uri,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode ledger response from %s: %w", uri, err)
		}
	}
	return nil
}
