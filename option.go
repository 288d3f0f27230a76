package tourpay

import (
	"time"

	"github.com/vijay-talsangi/tourist-app/history"
	"github.com/vijay-talsangi/tourist-app/logger"
	"github.com/vijay-talsangi/tourist-app/metrics"
)

type Option func(*TourPay)

func WithLogger(l logger.Logger) Option {
	return func(t *TourPay) {
		t.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(t *TourPay) {
		t.metrics = r
	}
}

func WithInclusionTimeout(d time.Duration) Option {
	return func(t *TourPay) {
		t.timeout = d
	}
}

func WithHistoryStore(s history.Store) Option {
	return func(t *TourPay) {
		t.historyStore = s
	}
}
