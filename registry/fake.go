package registry

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vijay-talsangi/tourist-app/types"
)

var _ Ledger = (*Fake)(nil)

// Fake is an in-memory Ledger for tests. It mimics the contract's observable
// behavior: zero-valued sentinels for unknown receivers, identifier
// derivation at the ledger side, reverts for missing receivers, and
// caller-scoped payment queries.
type Fake struct {
	mu        sync.Mutex
	chainID   *big.Int
	receivers map[types.ReceiverID]types.Receiver
	byUPI     map[string]types.ReceiverID
	payments  []types.Payment
	calls     map[string]int
	clock     uint64
	nonce     uint64

	// ReadErr forces every read to fail, SubmitErr every write submission,
	// WaitErr every inclusion wait. WaitDelay stalls inclusion.
	ReadErr   error
	SubmitErr error
	WaitErr   error
	WaitDelay time.Duration
}

// NewFake builds an empty fake ledger on the given chain.
func NewFake(chainID int64) *Fake {
	return &Fake{
		chainID:   big.NewInt(chainID),
		receivers: make(map[types.ReceiverID]types.Receiver),
		byUPI:     make(map[string]types.ReceiverID),
		calls:     make(map[string]int),
		clock:     1700000000,
	}
}

// Calls reports how many times the named contract method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// SeedReceiver registers a receiver directly, bypassing the write path.
func (f *Fake) SeedReceiver(upiID, name string, addedBy common.Address) types.Receiver {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addReceiverLocked(upiID, name, addedBy)
}

// SeedPayment appends a payment record directly.
func (f *Fake) SeedPayment(p types.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, p)
}

func (f *Fake) addReceiverLocked(upiID, name string, addedBy common.Address) types.Receiver {
	id := types.ReceiverID(crypto.Keccak256Hash([]byte(upiID), []byte{0}, []byte(name)))
	rcv := types.Receiver{
		ID:        id,
		UPIID:     upiID,
		Name:      name,
		AddedBy:   addedBy,
		CreatedAt: f.tickLocked(),
		Exists:    true,
	}
	f.receivers[id] = rcv
	f.byUPI[strings.ToLower(upiID)] = id
	return rcv
}

func (f *Fake) tickLocked() uint64 {
	f.clock++
	return f.clock
}

func (f *Fake) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

// FindReceiverIDByUPI implements Ledger.
func (f *Fake) FindReceiverIDByUPI(_ context.Context, upiID string) (types.ReceiverID, bool, error) {
	f.record("findReceiverIdByUPI")
	if f.ReadErr != nil {
		return types.ReceiverID{}, false, Classify("findReceiverIdByUPI", f.ReadErr)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byUPI[strings.ToLower(upiID)]
	return id, ok, nil
}

// GetReceiver implements Ledger.
func (f *Fake) GetReceiver(_ context.Context, id types.ReceiverID) (types.Receiver, error) {
	f.record("getReceiver")
	if f.ReadErr != nil {
		return types.Receiver{}, Classify("getReceiver", f.ReadErr)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	rcv, ok := f.receivers[id]
	if !ok {
		return types.Receiver{ID: id}, nil
	}
	return rcv, nil
}

// AddReceiver implements Ledger.
func (f *Fake) AddReceiver(_ context.Context, opts *bind.TransactOpts, upiID, name string) (*PendingTx, error) {
	f.record("addReceiver")
	if f.SubmitErr != nil {
		return nil, Classify("addReceiver", f.SubmitErr)
	}
	if upiID == "" || name == "" {
		return nil, Classify("addReceiver", fmt.Errorf("execution reverted: Empty UPI id or name"))
	}

	from := opts.From
	return f.pending(func() (*Inclusion, error) {
		f.mu.Lock()
		rcv := f.addReceiverLocked(upiID, name, from)
		f.mu.Unlock()
		return &Inclusion{ReceiverID: rcv.ID}, nil
	}), nil
}

// RecordUPIPayment implements Ledger. A missing receiver reverts at
// submission, the way gas estimation surfaces contract requires.
func (f *Fake) RecordUPIPayment(_ context.Context, opts *bind.TransactOpts, id types.ReceiverID, amountPaise *big.Int, upiTxnID string) (*PendingTx, error) {
	f.record("recordUPIPayment")
	if f.SubmitErr != nil {
		return nil, Classify("recordUPIPayment", f.SubmitErr)
	}

	f.mu.Lock()
	rcv, ok := f.receivers[id]
	f.mu.Unlock()
	if !ok {
		return nil, Classify("recordUPIPayment", fmt.Errorf("execution reverted: Receiver does not exist"))
	}

	from := opts.From
	amount := amountPaise.Uint64()
	return f.pending(func() (*Inclusion, error) {
		f.mu.Lock()
		p := types.Payment{
			From:        from,
			To:          rcv.AddedBy,
			ReceiverID:  id,
			AmountPaise: amount,
			UPITxnID:    upiTxnID,
			Timestamp:   f.tickLocked(),
		}
		f.payments = append(f.payments, p)
		f.mu.Unlock()
		return &Inclusion{Payment: &p}, nil
	}), nil
}

// GetMyPayments implements Ledger.
func (f *Fake) GetMyPayments(_ context.Context, caller common.Address) ([]types.Payment, error) {
	f.record("getMyPayments")
	if f.ReadErr != nil {
		return nil, Classify("getMyPayments", f.ReadErr)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Payment
	for _, p := range f.payments {
		if p.From == caller || p.To == caller {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetPaymentsOf implements Ledger.
func (f *Fake) GetPaymentsOf(_ context.Context, user common.Address) ([]types.Payment, error) {
	f.record("getPaymentsOf")
	if f.ReadErr != nil {
		return nil, Classify("getPaymentsOf", f.ReadErr)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Payment
	for _, p := range f.payments {
		if p.From == user {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetPaymentsTo implements Ledger.
func (f *Fake) GetPaymentsTo(_ context.Context, id types.ReceiverID) ([]types.Payment, error) {
	f.record("getPaymentsTo")
	if f.ReadErr != nil {
		return nil, Classify("getPaymentsTo", f.ReadErr)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Payment
	for _, p := range f.payments {
		if p.ReceiverID == id {
			out = append(out, p)
		}
	}
	return out, nil
}

// ChainID implements Ledger.
func (f *Fake) ChainID() *big.Int {
	return new(big.Int).Set(f.chainID)
}

// Close implements Ledger.
func (f *Fake) Close() {}

func (f *Fake) pending(apply func() (*Inclusion, error)) *PendingTx {
	f.mu.Lock()
	f.nonce++
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], f.nonce)
	hash := crypto.Keccak256Hash(seed[:])
	delay := f.WaitDelay
	waitErr := f.WaitErr
	f.mu.Unlock()

	return NewPendingTx(hash, func(ctx context.Context) (*Inclusion, error) {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil, Classify("await inclusion", ctx.Err())
			case <-time.After(delay):
			}
		}
		if waitErr != nil {
			return nil, Classify("await inclusion", waitErr)
		}
		inc, err := apply()
		if err != nil {
			return nil, err
		}
		inc.TxHash = hash
		return inc, nil
	})
}
