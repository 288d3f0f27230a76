// Package recorder commits on-chain records of completed off-chain UPI
// payments. This is the only component that writes payment state.
package recorder

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/vijay-talsangi/tourist-app/logger"
	"github.com/vijay-talsangi/tourist-app/metrics"
	"github.com/vijay-talsangi/tourist-app/registry"
	"github.com/vijay-talsangi/tourist-app/types"
	"github.com/vijay-talsangi/tourist-app/wallet"
)

var hundred = decimal.NewFromInt(100)

// HistoryInvalidator is the slice of the history cache the recorder needs:
// after inclusion the cached view is stale and must be dropped.
type HistoryInvalidator interface {
	Invalidate(ctx context.Context, owner common.Address) error
}

// Recorder submits recordUPIPayment calls through the wallet session.
type Recorder struct {
	ledger           registry.Ledger
	session          *wallet.Session
	history          HistoryInvalidator
	inclusionTimeout time.Duration
	log              logger.Logger
	metrics          metrics.Recorder
}

// New builds a Recorder. history may be nil when no cache is wired.
func New(ledger registry.Ledger, session *wallet.Session, history HistoryInvalidator, inclusionTimeout time.Duration, log logger.Logger, rec metrics.Recorder) *Recorder {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Recorder{
		ledger:           ledger,
		session:          session,
		history:          history,
		inclusionTimeout: inclusionTimeout,
		log:              log,
		metrics:          rec,
	}
}

// ToPaise converts a decimal rupee amount to paise, rounding half away
// from zero: "150.005" becomes 15001. Zero, negative or unparseable
// amounts are rejected, never clamped.
func ToPaise(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidAmount,
			Message: "amount must be a decimal number",
		}
	}

	paise := d.Mul(hundred).Round(0)
	if !paise.IsPositive() {
		return nil, &types.Error{
			Code:    types.ErrInvalidAmount,
			Message: "amount must round to at least one paisa",
		}
	}
	return paise.BigInt(), nil
}

// RecordPayment validates, submits and awaits inclusion of one payment
// record, then invalidates the history cache. Submission acceptance and
// inclusion are distinct completion points; the returned Payment is the
// on-chain record decoded from the PaymentRecorded event, available only
// after inclusion.
//
// upiTxnRef is the off-chain payment reference and is recorded as given:
// the ledger enforces no uniqueness for (receiver, reference), so
// resubmitting the same reference creates a second, distinct record. The
// recorder therefore never retries on its own.
func (r *Recorder) RecordPayment(ctx context.Context, id types.ReceiverID, amount, upiTxnRef string) (types.Payment, error) {
	if id.IsZero() {
		return types.Payment{}, &types.Error{
			Code:    types.ErrInvalidIdentifierFormat,
			Message: "receiver id must not be zero",
		}
	}

	paise, err := ToPaise(amount)
	if err != nil {
		return types.Payment{}, err
	}

	if upiTxnRef == "" {
		return types.Payment{}, &types.Error{
			Code:    types.ErrInvalidReference,
			Message: "the off-chain UPI transaction reference is required",
		}
	}

	rcv, err := r.ledger.GetReceiver(ctx, id)
	if err != nil {
		return types.Payment{}, err
	}
	if !rcv.Exists {
		return types.Payment{}, &types.Error{
			Code:    types.ErrReceiverNotFound,
			Message: "receiver is not registered on the ledger",
		}
	}

	writer, err := r.session.AcquireWriter(r.ledger.ChainID())
	if err != nil {
		return types.Payment{}, err
	}
	defer writer.Release()

	started := time.Now()
	pending, err := r.ledger.RecordUPIPayment(ctx, writer.Opts, id, paise, upiTxnRef)
	if err != nil {
		if errors.Is(err, wallet.ErrRejected) {
			return types.Payment{}, &types.Error{
				Code:    types.ErrUserRejected,
				Message: "signing request rejected by the user",
			}
		}
		r.observe("record_payment", started, "submit_error")
		return types.Payment{}, err
	}

	r.log.Info("payment submitted", map[string]any{
		"receiver": id.Hex(),
		"paise":    paise.String(),
		"tx":       pending.Hash.Hex(),
	})

	inc, err := registry.Await(ctx, pending, r.inclusionTimeout, writer.Done())
	if err != nil {
		r.observe("record_payment", started, "inclusion_error")
		return types.Payment{}, err
	}

	payment := types.Payment{
		ReceiverID:  id,
		AmountPaise: paise.Uint64(),
		UPITxnID:    upiTxnRef,
	}
	if inc.Payment != nil {
		payment = *inc.Payment
	}

	if r.history != nil {
		if err := r.history.Invalidate(ctx, payment.From); err != nil {
			r.log.Warn("history invalidation failed", map[string]any{"error": err.Error()})
		}
	}

	r.observe("record_payment", started, "ok")
	r.log.Info("payment recorded", map[string]any{
		"receiver": id.Hex(),
		"paise":    paise.String(),
		"tx":       inc.TxHash.Hex(),
		"block":    inc.BlockNumber,
	})
	return payment, nil
}

func (r *Recorder) observe(op string, started time.Time, outcome string) {
	labels := map[string]string{"outcome": outcome}
	r.metrics.IncCounter(op, labels)
	r.metrics.ObserveLatency(op, time.Since(started), labels)
}
