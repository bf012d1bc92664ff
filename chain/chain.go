// Package chain links a sequence of one-to-one payments into a single
// contiguous transfer chain.
package chain

import (
	"fmt"

	"github.com/hopchain/hopchain/types"
	"github.com/hopchain/hopchain/utils"
)

// Chain is the linked view over a sequence of one-to-one payments. It owns
// the chain-ordered transfer arena; each payment records the arena index of
// its source and destination transfer, and adjacent payments share the
// transfer object at the index where they meet. Writes through the arena
// are therefore visible in both adjacent payments.
//
// A chain is built once and then mutated in place by condition attachment
// and submission. Access is strictly sequential; the chain is not safe for
// concurrent mutation.
type Chain struct {
	payments  []*types.Payment
	transfers []*types.Transfer
	source    []int
	dest      []int
}

// Build links payments into a chain. The first debit of the first transfer
// is set to sourceAccount, each source transfer gets a fresh ledger-scoped
// id and a back-reference to its payment, and each payment's destination
// transfer is replaced by the next payment's source transfer so the chain
// shares endpoints between hops. The final destination transfer gets its
// own fresh id and back-reference.
//
// Payments are validated for one-to-one shape before any mutation; a
// payment with any other cardinality fails the whole call.
func Build(payments []*types.Payment, sourceAccount string) (*Chain, error) {
	if len(payments) == 0 {
		return nil, &types.Error{
			Code:    types.ErrInvalidPaymentShape,
			Message: "payment chain must contain at least one payment",
		}
	}

	for _, p := range payments {
		if len(p.SourceTransfers) != 1 || len(p.DestinationTransfers) != 1 {
			return nil, &types.Error{
				Code: types.ErrInvalidPaymentShape,
				Message: fmt.Sprintf(
					"payment %s must have exactly one source and one destination transfer (got %d/%d)",
					p.ID, len(p.SourceTransfers), len(p.DestinationTransfers)),
				Data: p.ID,
			}
		}
		if len(p.SourceTransfers[0].Debits) == 0 {
			return nil, &types.Error{
				Code:    types.ErrInvalidPaymentShape,
				Message: fmt.Sprintf("payment %s source transfer has no debits", p.ID),
				Data:    p.ID,
			}
		}
	}

	for i, p := range payments {
		src := p.SourceTransfers[0]
		src.ID = utils.ResourceURI(src.Ledger, "transfers")
		src.Info().PartOfPayment = p.ID

		if i == 0 {
			src.Debits[0].Account = sourceAccount
		} else {
			prev := payments[i-1]
			src.Debits = prev.DestinationTransfers[0].Debits
			prev.DestinationTransfers[0] = src
		}
	}

	last := payments[len(payments)-1]
	final := last.DestinationTransfers[0]
	final.ID = utils.ResourceURI(final.Ledger, "transfers")
	final.Info().PartOfPayment = last.ID

	c := &Chain{
		payments:  payments,
		transfers: make([]*types.Transfer, 0, len(payments)+1),
		source:    make([]int, len(payments)),
		dest:      make([]int, len(payments)),
	}
	for i, p := range payments {
		c.transfers = append(c.transfers, p.SourceTransfers[0])
		c.source[i] = i
		c.dest[i] = i + 1
	}
	c.transfers = append(c.transfers, final)

	return c, nil
}

// Payments returns the payments in chain order.
func (c *Chain) Payments() []*types.Payment {
	return c.payments
}

// Transfers returns the chain-ordered transfer list. For N payments it has
// exactly N+1 entries; shared endpoints appear once.
func (c *Chain) Transfers() []*types.Transfer {
	out := make([]*types.Transfer, len(c.transfers))
	copy(out, c.transfers)
	return out
}

// Len is the number of transfers in the chain.
func (c *Chain) Len() int {
	return len(c.transfers)
}

// Transfer returns the arena entry at index i.
func (c *Chain) Transfer(i int) *types.Transfer {
	return c.transfers[i]
}

// First returns the source-side transfer of the chain.
func (c *Chain) First() *types.Transfer {
	return c.transfers[0]
}

// Final returns the destination-side transfer of the chain.
func (c *Chain) Final() *types.Transfer {
	return c.transfers[len(c.transfers)-1]
}

// SourceIndex returns the arena index of payment i's source transfer.
func (c *Chain) SourceIndex(i int) int {
	return c.source[i]
}

// DestinationIndex returns the arena index of payment i's destination
// transfer.
func (c *Chain) DestinationIndex(i int) int {
	return c.dest[i]
}

// IndexOf returns the arena index of the transfer with the given id, or -1.
func (c *Chain) IndexOf(transferID string) int {
	for i, t := range c.transfers {
		if t.ID == transferID {
			return i
		}
	}
	return -1
}

// Apply overwrites the arena entry at index i with the given transfer
// document, keeping the entry's identity so every payment holding the index
// observes the update. An empty id on the incoming document preserves the
// current one.
func (c *Chain) Apply(i int, t *types.Transfer) {
	cur := c.transfers[i]
	id := cur.ID
	*cur = *t
	if cur.ID == "" {
		cur.ID = id
	}
}
