package sync

import (
	"time"

	"github.com/forcebridge/relayer/log"
)

const (
	defaultRetryAfterErrorPeriod      = time.Second * 10
	defaultMaxRetryAttemptsAfterError = 5
)

// RetryHandler waits between attempts of an operation and gives up after too many of them
type RetryHandler struct {
	RetryAfterErrorPeriod time.Duration
	// MaxRetryAttemptsAfterError is the number of attempts before the process is stopped, negative means forever
	MaxRetryAttemptsAfterError int
}

// NewRetryHandler returns a handler, zero values are replaced by the defaults
func NewRetryHandler(period time.Duration, maxAttempts int) *RetryHandler {
	if period == 0 {
		period = defaultRetryAfterErrorPeriod
	}
	if maxAttempts == 0 {
		maxAttempts = defaultMaxRetryAttemptsAfterError
	}
	return &RetryHandler{RetryAfterErrorPeriod: period, MaxRetryAttemptsAfterError: maxAttempts}
}

// Handle sleeps before the next attempt
func (h *RetryHandler) Handle(funcName string, attempts int) {
	if h.MaxRetryAttemptsAfterError > -1 && attempts >= h.MaxRetryAttemptsAfterError {
		log.Fatalf(
			"%s failed too many times (%d)",
			funcName, h.MaxRetryAttemptsAfterError,
		)
	}
	time.Sleep(h.RetryAfterErrorPeriod)
}
