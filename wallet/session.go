// Package wallet manages the signing session contract calls are bound to.
// There is exactly one active session, shared process-wide, with one
// in-flight write at a time.
package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vijay-talsangi/tourist-app/types"
)

// State of the session connection.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// ErrRejected is returned by interactive signers when the user declines a
// signing request.
var ErrRejected = errors.New("wallet: signing request rejected")

// Signer is the opaque signing capability a session is bound to. Key
// custody lives behind this interface.
type Signer interface {
	Address() common.Address
	TransactOpts(chainID *big.Int) (*bind.TransactOpts, error)
}

// Session is the connection to a signing identity and its target chain.
type Session struct {
	mu       sync.Mutex
	state    State
	signer   Signer
	chainID  *big.Int
	inFlight bool
	done     chan struct{}
}

// NewSession starts disconnected.
func NewSession() *Session {
	return &Session{state: StateDisconnected}
}

// Connect binds the session to a signer targeting chainID. A nil signer or
// chain models the provider failing or the user cancelling: the session
// falls back to Disconnected and the failure is reported, not retried.
func (s *Session) Connect(signer Signer, chainID *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateConnected {
		return errors.New("wallet: session already connected")
	}

	s.state = StateConnecting
	if signer == nil || chainID == nil {
		s.state = StateDisconnected
		return errors.New("wallet: connect failed, signer unavailable")
	}

	s.signer = signer
	s.chainID = new(big.Int).Set(chainID)
	s.done = make(chan struct{})
	s.state = StateConnected
	return nil
}

// Disconnect tears the session down. A write already submitted to the
// ledger is not withdrawn; its local wait observes Done and stops.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateConnected {
		close(s.done)
	}
	s.signer = nil
	s.chainID = nil
	s.inFlight = false
	s.state = StateDisconnected
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connected reports whether calls requiring a signer may proceed.
func (s *Session) Connected() bool {
	return s.State() == StateConnected
}

// Address returns the signing address of the connected session.
func (s *Session) Address() (common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return common.Address{}, &types.Error{
			Code:    types.ErrWalletNotConnected,
			Message: "no connected wallet session",
		}
	}
	return s.signer.Address(), nil
}

// ChainID returns the session's target chain, or nil when disconnected.
func (s *Session) ChainID() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chainID == nil {
		return nil
	}
	return new(big.Int).Set(s.chainID)
}

// AcquireWriter reserves the session's single write slot and returns
// signing options for one state-changing call. ledgerChainID is the chain
// the registry is deployed on; a mismatch fails here, before anything is
// submitted. Callers must Release the writer when the call settles.
func (s *Session) AcquireWriter(ledgerChainID *big.Int) (*Writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		return nil, &types.Error{
			Code:    types.ErrWalletNotConnected,
			Message: "no connected wallet session",
		}
	}
	if ledgerChainID != nil && s.chainID.Cmp(ledgerChainID) != 0 {
		return nil, &types.Error{
			Code:    types.ErrWrongChain,
			Message: fmt.Sprintf("session targets chain %s but the registry is deployed on chain %s", s.chainID, ledgerChainID),
		}
	}
	if s.inFlight {
		return nil, &types.Error{
			Code:    types.ErrOperationInProgress,
			Message: "another write is already in flight on this session",
		}
	}

	opts, err := s.signer.TransactOpts(s.chainID)
	if err != nil {
		if errors.Is(err, ErrRejected) {
			return nil, &types.Error{
				Code:    types.ErrUserRejected,
				Message: "signing request rejected by the user",
			}
		}
		return nil, fmt.Errorf("prepare signing options: %w", err)
	}

	s.inFlight = true
	return &Writer{Opts: opts, done: s.done, session: s}, nil
}

// Writer is a one-shot hold on the session's write slot.
type Writer struct {
	// Opts signs exactly one contract call.
	Opts *bind.TransactOpts

	done    <-chan struct{}
	session *Session
	once    sync.Once
}

// Done is closed when the session is torn down; waits select on it so a
// disconnect stops the local flow instead of hanging.
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

// Release frees the write slot. Safe to call more than once.
func (w *Writer) Release() {
	w.once.Do(func() {
		w.session.mu.Lock()
		w.session.inFlight = false
		w.session.mu.Unlock()
	})
}
