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

// HTTPNotary is the NotaryClient over plain HTTP/JSON resources.
type HTTPNotary struct {
	http Doer
}

// NewHTTPNotary creates a notary client. A nil doer falls back to
// http.DefaultClient.
func NewHTTPNotary(doer Doer) *HTTPNotary {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &HTTPNotary{http: doer}
}

// CreateCase registers the case via PUT on its resource URI.
func (n *HTTPNotary) CreateCase(ctx context.Context, c *types.Case) error {
	return n.put(ctx, c.ID, c)
}

// SubmitFulfillment posts the proof of fulfillment to the case.
func (n *HTTPNotary) SubmitFulfillment(ctx context.Context, caseID string, f *types.Fulfillment) error {
	return n.put(ctx, caseID+"/fulfillment", f)
}

func (n *HTTPNotary) put(ctx context.Context, uri string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document for %s: %w", uri, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uri, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", uri, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("notary request to %s failed: %w", uri, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read notary response from %s: %w", uri, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &RemoteError{
			Kind:       KindNotary,
			Resource:   uri,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}
	return nil
}
