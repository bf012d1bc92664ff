package hopchain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopchain/hopchain/settlement"
	"github.com/hopchain/hopchain/types"
)

// settlementStub plays every remote collaborator at once: three ledgers and
// the notary, all under one test server.
type settlementStub struct {
	mu sync.Mutex

	transferOrder []string
	authedPaths   []string
	paymentOrder  []string
	cases         []types.Case
	fulfillments  []types.Fulfillment
}

func (s *settlementStub) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		path := r.URL.Path
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(path, "/state"):
			json.NewEncoder(w).Encode(types.TransferState{
				Stage:     types.StagePrepared,
				Type:      "ed25519-sha512",
				Signature: "Mjzrh3wmLYMB3i7C1ZDXRQ",
			})
		case r.Method == http.MethodPut && strings.HasSuffix(path, "/fulfillment"):
			var f types.Fulfillment
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f))
			s.fulfillments = append(s.fulfillments, f)
		case r.Method == http.MethodPut && strings.Contains(path, "/cases/"):
			var c types.Case
			require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
			s.cases = append(s.cases, c)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && strings.Contains(path, "/transfers/"):
			if _, _, ok := r.BasicAuth(); ok {
				s.authedPaths = append(s.authedPaths, path)
			}
			s.transferOrder = append(s.transferOrder, path)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(types.TransferState{Stage: types.StageProposed})
		case r.Method == http.MethodPut && strings.Contains(path, "/payments/"):
			var p types.Payment
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			s.paymentOrder = append(s.paymentOrder, path)
			json.NewEncoder(w).Encode(&p)
		default:
			t.Errorf("unexpected request %s %s", r.Method, path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func stubPayment(base, id, srcCur, dstCur, amount string) *types.Payment {
	amt := decimal.RequireFromString(amount)
	src := base + "/" + srcCur
	dst := base + "/" + dstCur
	return &types.Payment{
		ID: src + "/payments/" + id,
		SourceTransfers: []*types.Transfer{{
			Ledger:  src,
			Debits:  []types.Debit{{Account: src + "/accounts/sender", Amount: amt}},
			Credits: []types.Credit{{Account: src + "/accounts/connector", Amount: amt}},
		}},
		DestinationTransfers: []*types.Transfer{{
			Ledger:  dst,
			Debits:  []types.Debit{{Account: dst + "/accounts/connector", Amount: amt}},
			Credits: []types.Credit{{Account: dst + "/accounts/receiver", Amount: amt}},
		}},
	}
}

func TestSendAtomic(t *testing.T) {
	stub := &settlementStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	sender := New(&types.Config{
		PollInterval: time.Millisecond,
	})

	payments := []*types.Payment{
		stubPayment(srv.URL, "1", "usd", "eur", "10"),
		stubPayment(srv.URL, "2", "eur", "jpy", "9"),
		stubPayment(srv.URL, "3", "jpy", "mxn", "1300"),
	}

	c, err := sender.SendAtomic(context.Background(), &AtomicRequest{
		ChainRequest: ChainRequest{
			Payments:      payments,
			SourceAccount: srv.URL + "/usd/accounts/alice",
			Credentials:   &types.Credentials{Username: "alice", Password: "alice"},
		},
		ExecutionCondition:    "cc:0:3:exec:32",
		CancellationCondition: "cc:0:3:cancel:32",
		Notary:                srv.URL + "/notary",
	})
	require.NoError(t, err)

	transfers := c.Transfers()
	require.Len(t, transfers, 4)
	assert.Equal(t, srv.URL+"/usd/accounts/alice", c.First().Debits[0].Account)
	assert.True(t, c.First().Debits[0].Authorized)

	require.Len(t, stub.cases, 1)
	caseID := stub.cases[0].ID
	assert.True(t, strings.HasPrefix(caseID, srv.URL+"/notary/cases/"))
	require.Len(t, stub.cases[0].NotificationTargets, 4)
	for i, tr := range transfers {
		assert.Equal(t, tr.ID+"/fulfillment", stub.cases[0].NotificationTargets[i])
	}

	for _, tr := range transfers {
		assert.Equal(t, types.Condition("cc:0:3:exec:32"), tr.ExecutionCondition)
		assert.Equal(t, types.Condition("cc:0:3:cancel:32"), tr.CancellationCondition)
		assert.Equal(t, []string{caseID}, tr.AdditionalInfo.Cases)
		assert.Nil(t, tr.ExpiresAt)
		require.NotNil(t, tr.State)
	}

	// transfers proposed strictly in chain order, credentials on hop 0 only
	require.Len(t, stub.transferOrder, 4)
	for i, tr := range transfers {
		assert.True(t, strings.HasSuffix(tr.ID, stub.transferOrder[i]))
	}
	require.Len(t, stub.authedPaths, 1)
	assert.True(t, strings.HasSuffix(transfers[0].ID, stub.authedPaths[0]))

	assert.Len(t, stub.paymentOrder, 3)

	require.Len(t, stub.fulfillments, 1)
	assert.Equal(t, "ed25519-sha512", stub.fulfillments[0].Type)
	assert.Equal(t, "Mjzrh3wmLYMB3i7C1ZDXRQ", stub.fulfillments[0].Signature)
	assert.Equal(t, settlement.CaseStateFulfilled, sender.CaseState())
}

func TestSendUniversal(t *testing.T) {
	stub := &settlementStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	sender := New(&types.Config{
		ExecutionWindow:  time.Minute,
		MinMessageWindow: time.Second,
	}, WithClock(func() time.Time { return now }))

	payments := []*types.Payment{
		stubPayment(srv.URL, "1", "usd", "eur", "10"),
		stubPayment(srv.URL, "2", "eur", "jpy", "9"),
	}

	c, err := sender.SendUniversal(context.Background(), &UniversalRequest{
		ChainRequest: ChainRequest{
			Payments:      payments,
			SourceAccount: srv.URL + "/usd/accounts/alice",
			Credentials:   &types.Credentials{Username: "alice", Password: "alice"},
		},
		ExecutionCondition: "cc:0:3:exec:32",
	})
	require.NoError(t, err)

	transfers := c.Transfers()
	require.Len(t, transfers, 3)

	for _, tr := range transfers {
		assert.Equal(t, types.Condition("cc:0:3:exec:32"), tr.ExecutionCondition)
		assert.Empty(t, tr.CancellationCondition)
		require.NotNil(t, tr.ExpiresAt)
	}
	assert.Equal(t, now.Add(time.Minute), *c.Final().ExpiresAt)
	assert.Equal(t, now.Add(time.Minute+time.Second), *transfers[0].ExpiresAt)
	assert.Equal(t, now.Add(time.Minute+time.Second), *transfers[1].ExpiresAt)

	// no notary involvement in universal mode
	assert.Empty(t, stub.cases)
	assert.Empty(t, stub.fulfillments)
	assert.Equal(t, settlement.CaseStateNone, sender.CaseState())
}

func TestSendRejectsBadShape(t *testing.T) {
	sender := NewWithDefaults()

	bad := stubPayment("http://usd.example", "1", "usd", "eur", "10")
	bad.SourceTransfers = nil

	_, err := sender.SendUniversal(context.Background(), &UniversalRequest{
		ChainRequest:       ChainRequest{Payments: []*types.Payment{bad}, SourceAccount: "http://usd.example/accounts/alice"},
		ExecutionCondition: "cc:0:3:exec:32",
	})
	require.Error(t, err)

	var terr *types.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, types.ErrInvalidDocument, terr.Code)
}
