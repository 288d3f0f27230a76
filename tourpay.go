// Package tourpay reconciles off-chain instant UPI payments with their
// on-chain records: it resolves scanned or typed receiver identifiers,
// composes the external payment-app deep link, commits payment records
// through a wallet session and reconstructs the caller's history from
// ledger state.
package tourpay

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vijay-talsangi/tourist-app/composer"
	"github.com/vijay-talsangi/tourist-app/directory"
	"github.com/vijay-talsangi/tourist-app/history"
	"github.com/vijay-talsangi/tourist-app/logger"
	"github.com/vijay-talsangi/tourist-app/metrics"
	"github.com/vijay-talsangi/tourist-app/recorder"
	"github.com/vijay-talsangi/tourist-app/registry"
	"github.com/vijay-talsangi/tourist-app/types"
	"github.com/vijay-talsangi/tourist-app/wallet"
)

// DefaultInclusionTimeout bounds the wait for a submitted write to land in
// a block when the config does not say otherwise.
const DefaultInclusionTimeout = 2 * time.Minute

// TourPay is the facade owning the wallet session and every payment
// component.
type TourPay struct {
	config  *types.Config
	ledger  registry.Ledger
	session *wallet.Session

	directory *directory.Directory
	composer  *composer.Composer
	recorder  *recorder.Recorder
	history   *history.Cache

	logger       logger.Logger
	metrics      metrics.Recorder
	timeout      time.Duration
	historyStore history.Store
}

// New dials the registry and wires the components. The configured chain id
// must match the chain the RPC endpoint serves; a mismatch is refused here
// rather than on the first write.
func New(ctx context.Context, config *types.Config, opts ...Option) (*TourPay, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ledger, err := registry.Dial(ctx, config.RPCUrl, common.HexToAddress(config.ContractAddress))
	if err != nil {
		return nil, err
	}

	return build(config, ledger, opts...)
}

// NewWithLedger wires the components over an existing ledger client. Used
// by tests and by callers that manage the connection themselves.
func NewWithLedger(config *types.Config, ledger registry.Ledger, opts ...Option) (*TourPay, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return build(config, ledger, opts...)
}

func build(config *types.Config, ledger registry.Ledger, opts ...Option) (*TourPay, error) {
	t := &TourPay{
		config:  config,
		ledger:  ledger,
		session: wallet.NewSession(),
		logger:  logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
		timeout: config.InclusionTimeout,
	}
	if t.timeout <= 0 {
		t.timeout = DefaultInclusionTimeout
	}
	for _, opt := range opts {
		opt(t)
	}

	if ledger.ChainID().Cmp(big.NewInt(config.ChainID)) != 0 {
		ledger.Close()
		return nil, &types.Error{
			Code:    types.ErrWrongChain,
			Message: "rpc endpoint serves a different chain than configured",
		}
	}

	t.history = history.New(ledger, t.historyStore, t.logger, t.metrics)
	t.directory = directory.New(ledger, t.session, t.timeout, t.logger, t.metrics)
	t.composer = composer.New(config.CurrencyCode)
	t.recorder = recorder.New(ledger, t.session, t.history, t.timeout, t.logger, t.metrics)
	return t, nil
}

// Connect binds the process-wide wallet session to a signer targeting
// chainID.
func (t *TourPay) Connect(signer wallet.Signer, chainID int64) error {
	return t.session.Connect(signer, big.NewInt(chainID))
}

// Disconnect tears the wallet session down. In-flight waits stop with
// SESSION_CLOSED; already-submitted transactions are not withdrawn.
func (t *TourPay) Disconnect() {
	t.session.Disconnect()
}

// Session exposes the wallet session for state inspection.
func (t *TourPay) Session() *wallet.Session {
	return t.session
}

// ResolveReceiver resolves a scanned or typed hex identifier.
func (t *TourPay) ResolveReceiver(ctx context.Context, rawID string) (types.Receiver, error) {
	return t.directory.ResolveByID(ctx, rawID)
}

// ResolveUPI resolves a human-entered UPI alias.
func (t *TourPay) ResolveUPI(ctx context.Context, upiID string) (types.Receiver, error) {
	return t.directory.ResolveByAlias(ctx, upiID)
}

// RegisterReceiver adds a payee to the registry under the active session.
func (t *TourPay) RegisterReceiver(ctx context.Context, upiID, name string) (types.ReceiverID, error) {
	return t.directory.Register(ctx, upiID, name)
}

// ComposePaymentLink builds the external UPI app invocation for a resolved
// receiver.
func (t *TourPay) ComposePaymentLink(rcv types.Receiver, amount, note string) (string, error) {
	return t.composer.BuildUPILink(rcv, amount, note)
}

// RecordPayment commits one payment record and waits for inclusion.
func (t *TourPay) RecordPayment(ctx context.Context, id types.ReceiverID, amount, upiTxnRef string) (types.Payment, error) {
	return t.recorder.RecordPayment(ctx, id, amount, upiTxnRef)
}

// RefreshHistory replaces and returns the session owner's payment history.
func (t *TourPay) RefreshHistory(ctx context.Context) ([]types.Payment, error) {
	caller, err := t.session.Address()
	if err != nil {
		return nil, err
	}
	return t.history.Refresh(ctx, caller)
}

// History exposes the cache for snapshot and per-party reads.
func (t *TourPay) History() *history.Cache {
	return t.history
}

// ChainID returns the chain the registry is deployed on.
func (t *TourPay) ChainID() *big.Int {
	return t.ledger.ChainID()
}

// Close disconnects the session and releases the ledger connection.
func (t *TourPay) Close() {
	t.session.Disconnect()
	t.ledger.Close()
}

// Version information
const Version = "1.0.0"
