package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hopchain/hopchain/chain"
	"github.com/hopchain/hopchain/types"
)

// fakeLedger implements clients.LedgerClient in memory.
type fakeLedger struct {
	createdOrder []string
	credsByID    map[string]*types.Credentials
	createErrOn  string
	createErr    error

	stateSeq   map[string][]*types.TransferState
	stateCalls int

	paymentOrder []string
	paymentResp  func(p *types.Payment) *types.Payment
	paymentErrOn string
	paymentErr   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		credsByID: make(map[string]*types.Credentials),
		stateSeq:  make(map[string][]*types.TransferState),
	}
}

func (f *fakeLedger) CreateTransfer(_ context.Context, t *types.Transfer, creds *types.Credentials) (*types.TransferState, error) {
	if f.createErrOn != "" && t.ID == f.createErrOn {
		return nil, f.createErr
	}
	f.createdOrder = append(f.createdOrder, t.ID)
	f.credsByID[t.ID] = creds
	return &types.TransferState{Stage: types.StageProposed}, nil
}

func (f *fakeLedger) GetTransferState(_ context.Context, transferID string) (*types.TransferState, error) {
	f.stateCalls++
	seq := f.stateSeq[transferID]
	if len(seq) == 0 {
		return &types.TransferState{Stage: types.StageProposed}, nil
	}
	state := seq[0]
	if len(seq) > 1 {
		f.stateSeq[transferID] = seq[1:]
	}
	return state, nil
}

func (f *fakeLedger) CreatePayment(_ context.Context, p *types.Payment) (*types.Payment, error) {
	if f.paymentErrOn != "" && p.ID == f.paymentErrOn {
		return nil, f.paymentErr
	}
	f.paymentOrder = append(f.paymentOrder, p.ID)
	if f.paymentResp != nil {
		return f.paymentResp(p), nil
	}
	return p, nil
}

// fakeNotary implements clients.NotaryClient in memory.
type fakeNotary struct {
	cases        []*types.Case
	fulfillments map[string]*types.Fulfillment
	caseErr      error
	fulfillErr   error
}

func newFakeNotary() *fakeNotary {
	return &fakeNotary{fulfillments: make(map[string]*types.Fulfillment)}
}

func (f *fakeNotary) CreateCase(_ context.Context, c *types.Case) error {
	if f.caseErr != nil {
		return f.caseErr
	}
	f.cases = append(f.cases, c)
	return nil
}

func (f *fakeNotary) SubmitFulfillment(_ context.Context, caseID string, fl *types.Fulfillment) error {
	if f.fulfillErr != nil {
		return f.fulfillErr
	}
	f.fulfillments[caseID] = fl
	return nil
}

func testPayment(id, srcLedger, dstLedger, amount string) *types.Payment {
	amt := decimal.RequireFromString(amount)
	return &types.Payment{
		ID: id,
		SourceTransfers: []*types.Transfer{{
			Ledger:  srcLedger,
			Debits:  []types.Debit{{Account: srcLedger + "/accounts/sender", Amount: amt}},
			Credits: []types.Credit{{Account: srcLedger + "/accounts/connector", Amount: amt}},
		}},
		DestinationTransfers: []*types.Transfer{{
			Ledger:  dstLedger,
			Debits:  []types.Debit{{Account: dstLedger + "/accounts/connector", Amount: amt}},
			Credits: []types.Credit{{Account: dstLedger + "/accounts/receiver", Amount: amt}},
		}},
	}
}

func testChain(t *testing.T) *chain.Chain {
	t.Helper()
	payments := []*types.Payment{
		testPayment("http://usd.example/payments/1", "http://usd.example", "http://eur.example", "10"),
		testPayment("http://eur.example/payments/2", "http://eur.example", "http://jpy.example", "9"),
	}
	c, err := chain.Build(payments, "http://usd.example/accounts/alice")
	require.NoError(t, err)
	return c
}

// instantSleep records requested sleeps without waiting.
type instantSleep struct {
	durations []time.Duration
}

func (s *instantSleep) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.durations = append(s.durations, d)
	return nil
}
