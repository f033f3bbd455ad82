package email

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSender stops calling a failing relay for a while instead of
// making every invite wait for its timeout.
type BreakerSender struct {
	next    Sender
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerSender wraps next with a circuit breaker that opens after five
// consecutive failures and probes again after thirty seconds.
func NewBreakerSender(next Sender, logger *zap.Logger) *BreakerSender {
	settings := gobreaker.Settings{
		Name:        "email",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("email circuit state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerSender{next: next, breaker: gobreaker.NewCircuitBreaker[any](settings)}
}

// Send delivers msg through the wrapped sender unless the circuit is open.
func (b *BreakerSender) Send(ctx context.Context, msg Message) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.next.Send(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	return err
}

// State reports the breaker state.
func (b *BreakerSender) State() gobreaker.State {
	return b.breaker.State()
}
