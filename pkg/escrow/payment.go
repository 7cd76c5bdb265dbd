// Package escrow models the external fungible-asset collaborator: an
// opaque balance of cents that can be split, merged and minted. The
// ledger core never does arithmetic on raw integers coming from
// callers; funds move by splitting one Payment into another.
package escrow

import (
	"context"
	"fmt"
)

// Payment is an opaque bag of funds. The zero value is an empty
// payment. Payments are not safe for concurrent use; each one belongs
// to a single in-flight operation.
type Payment struct {
	cents int64
}

// NewPayment wraps a non-negative amount of cents.
func NewPayment(cents int64) (*Payment, error) {
	if cents < 0 {
		return nil, fmt.Errorf("escrow: payment cannot be negative, got %d", cents)
	}
	return &Payment{cents: cents}, nil
}

// Value reports the funds currently held.
func (p *Payment) Value() int64 {
	if p == nil {
		return 0
	}
	return p.cents
}

// Split carves amount out of the payment, returning it as a new
// Payment and leaving the remainder behind.
func (p *Payment) Split(amount int64) (*Payment, error) {
	if p == nil {
		return nil, fmt.Errorf("escrow: split from nil payment")
	}
	if amount < 0 {
		return nil, fmt.Errorf("escrow: cannot split negative amount %d", amount)
	}
	if amount > p.cents {
		return nil, fmt.Errorf("escrow: split %d exceeds payment value %d", amount, p.cents)
	}
	p.cents -= amount
	return &Payment{cents: amount}, nil
}

// Put merges other into the payment, draining it.
func (p *Payment) Put(other *Payment) {
	if p == nil || other == nil {
		return
	}
	p.cents += other.cents
	other.cents = 0
}

// MintAuthority creates new funds. Delivery confirmation and refunds
// credit store escrow through a minter rather than reconciling the
// original purchase payment; that policy is deliberate and recorded in
// DESIGN.md.
type MintAuthority interface {
	Mint(ctx context.Context, cents int64) (*Payment, error)
}

// UnboundedMinter mints without limit. Production wires exactly one of
// these; tests substitute their own.
type UnboundedMinter struct{}

func (UnboundedMinter) Mint(_ context.Context, cents int64) (*Payment, error) {
	return NewPayment(cents)
}
