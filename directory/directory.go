// Package directory resolves receiver identifiers against the registry and
// registers new receivers under the active wallet session.
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/vijay-talsangi/tourist-app/logger"
	"github.com/vijay-talsangi/tourist-app/metrics"
	"github.com/vijay-talsangi/tourist-app/registry"
	"github.com/vijay-talsangi/tourist-app/types"
	"github.com/vijay-talsangi/tourist-app/wallet"
)

// Directory looks up and registers receivers. Reads require no session and
// may run concurrently with a pending write.
type Directory struct {
	ledger           registry.Ledger
	session          *wallet.Session
	inclusionTimeout time.Duration
	log              logger.Logger
	metrics          metrics.Recorder
}

// New builds a Directory over the given ledger and session.
func New(ledger registry.Ledger, session *wallet.Session, inclusionTimeout time.Duration, log logger.Logger, rec metrics.Recorder) *Directory {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Directory{
		ledger:           ledger,
		session:          session,
		inclusionTimeout: inclusionTimeout,
		log:              log,
		metrics:          rec,
	}
}

// ResolveByID looks a receiver up by its hex identifier. Malformed input
// fails with INVALID_IDENTIFIER_FORMAT before any network call; a
// well-formed unknown id resolves to Exists=false, which callers must
// branch on.
func (d *Directory) ResolveByID(ctx context.Context, rawID string) (types.Receiver, error) {
	id, err := types.ParseReceiverID(rawID)
	if err != nil {
		return types.Receiver{}, err
	}

	rcv, err := d.ledger.GetReceiver(ctx, id)
	if err != nil {
		d.log.Warn("receiver lookup failed", map[string]any{"id": id.Hex(), "error": err.Error()})
		return types.Receiver{}, err
	}
	return rcv, nil
}

// ResolveByAlias finds a receiver by its UPI id. Alias-not-found surfaces
// as Exists=false from the identifier lookup, never as an error.
func (d *Directory) ResolveByAlias(ctx context.Context, upiID string) (types.Receiver, error) {
	id, exists, err := d.ledger.FindReceiverIDByUPI(ctx, upiID)
	if err != nil {
		d.log.Warn("alias lookup failed", map[string]any{"upiId": upiID, "error": err.Error()})
		return types.Receiver{}, err
	}
	if !exists {
		return types.Receiver{}, nil
	}

	return d.ledger.GetReceiver(ctx, id)
}

// Register adds a receiver to the registry and returns the ledger-computed
// identifier taken from the ReceiverAdded event. It requires a connected
// session and holds the session's write slot until inclusion.
func (d *Directory) Register(ctx context.Context, upiID, name string) (types.ReceiverID, error) {
	writer, err := d.session.AcquireWriter(d.ledger.ChainID())
	if err != nil {
		return types.ReceiverID{}, err
	}
	defer writer.Release()

	started := time.Now()
	pending, err := d.ledger.AddReceiver(ctx, writer.Opts, upiID, name)
	if err != nil {
		if errors.Is(err, wallet.ErrRejected) {
			return types.ReceiverID{}, &types.Error{
				Code:    types.ErrUserRejected,
				Message: "signing request rejected by the user",
			}
		}
		return types.ReceiverID{}, err
	}

	inc, err := registry.Await(ctx, pending, d.inclusionTimeout, writer.Done())
	if err != nil {
		d.metrics.IncCounter("receiver_registered", map[string]string{"outcome": "error"})
		return types.ReceiverID{}, err
	}

	d.metrics.IncCounter("receiver_registered", map[string]string{"outcome": "ok"})
	d.metrics.ObserveLatency("register", time.Since(started), map[string]string{"outcome": "ok"})
	d.log.Info("receiver registered", map[string]any{
		"upiId": upiID,
		"id":    inc.ReceiverID.Hex(),
		"tx":    inc.TxHash.Hex(),
	})
	return inc.ReceiverID, nil
}
