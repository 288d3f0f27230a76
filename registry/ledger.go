// Package registry provides a typed client for the UPIRegistry contract.
// Every call the app makes is a named method here, so a malformed call is a
// compile error instead of a remote revert.
package registry

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vijay-talsangi/tourist-app/types"
)

// Ledger is the registry contract surface. Reads need no session; writes
// take signing options produced by an active wallet session.
type Ledger interface {
	FindReceiverIDByUPI(ctx context.Context, upiID string) (types.ReceiverID, bool, error)
	GetReceiver(ctx context.Context, id types.ReceiverID) (types.Receiver, error)
	AddReceiver(ctx context.Context, opts *bind.TransactOpts, upiID, name string) (*PendingTx, error)
	RecordUPIPayment(ctx context.Context, opts *bind.TransactOpts, id types.ReceiverID, amountPaise *big.Int, upiTxnID string) (*PendingTx, error)
	GetMyPayments(ctx context.Context, caller common.Address) ([]types.Payment, error)
	GetPaymentsOf(ctx context.Context, user common.Address) ([]types.Payment, error)
	GetPaymentsTo(ctx context.Context, id types.ReceiverID) ([]types.Payment, error)
	ChainID() *big.Int
	Close()
}

// Inclusion is the finalized outcome of a write: the point where the
// transaction is part of ledger state, as opposed to merely accepted.
type Inclusion struct {
	TxHash      common.Hash
	BlockNumber uint64

	// ReceiverID is the ledger-computed identifier from the ReceiverAdded
	// event, set for addReceiver writes.
	ReceiverID types.ReceiverID

	// Payment is the on-chain record from the PaymentRecorded event, set
	// for recordUPIPayment writes.
	Payment *types.Payment
}

// PendingTx is a submitted write awaiting inclusion. Submission and
// inclusion are distinct completion points; Wait blocks for the second.
type PendingTx struct {
	Hash common.Hash
	wait func(ctx context.Context) (*Inclusion, error)
}

// NewPendingTx wraps a submitted transaction hash with its inclusion wait.
func NewPendingTx(hash common.Hash, wait func(ctx context.Context) (*Inclusion, error)) *PendingTx {
	return &PendingTx{Hash: hash, wait: wait}
}

// Wait blocks until the transaction is mined or ctx ends.
func (p *PendingTx) Wait(ctx context.Context) (*Inclusion, error) {
	return p.wait(ctx)
}

// Await waits for inclusion with a bounded timeout, stopping early when the
// wallet session is torn down. The submitted transaction cannot be
// withdrawn; only the local wait is abandoned.
func Await(ctx context.Context, p *PendingTx, timeout time.Duration, done <-chan struct{}) (*Inclusion, error) {
	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		inc *Inclusion
		err error
	}
	ch := make(chan result, 1)

	go func() {
		inc, err := p.Wait(waitCtx)
		ch <- result{inc: inc, err: err}
	}()

	select {
	case <-done:
		return nil, &types.Error{
			Code:    types.ErrSessionClosed,
			Message: fmt.Sprintf("wallet session closed while awaiting inclusion of %s", p.Hash),
		}
	case r := <-ch:
		if r.err != nil {
			if waitCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
				return nil, &types.Error{
					Code:    types.ErrInclusionTimeout,
					Message: fmt.Sprintf("transaction %s not included within %s", p.Hash, timeout),
				}
			}
			return nil, r.err
		}
		return r.inc, nil
	}
}
