package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"avgverzoek/internal/accessrequest/models"
	"avgverzoek/pkg/platform/circuit"
)

type StatusNotifier interface {
	NotifyStatusChanged(ctx context.Context, event models.StatusChanged) error
}

const defaultProbeInterval = 30 * time.Second

// BreakerNotifier publishes through primary until it fails repeatedly, then
// hands events to fallback. While the circuit is open primary is retried at
// most once per probe interval, so requests are not held up by a broker that
// is down.
type BreakerNotifier struct {
	primary       StatusNotifier
	fallback      StatusNotifier
	breaker       *circuit.Breaker
	probeInterval time.Duration
	clock         func() time.Time
	logger        *slog.Logger

	mu        sync.Mutex
	lastProbe time.Time
}

type BreakerOption func(*BreakerNotifier)

func WithBreaker(b *circuit.Breaker) BreakerOption {
	return func(n *BreakerNotifier) { n.breaker = b }
}

func WithProbeInterval(d time.Duration) BreakerOption {
	return func(n *BreakerNotifier) { n.probeInterval = d }
}

func WithClock(clock func() time.Time) BreakerOption {
	return func(n *BreakerNotifier) { n.clock = clock }
}

func NewBreakerNotifier(primary, fallback StatusNotifier, logger *slog.Logger, opts ...BreakerOption) *BreakerNotifier {
	n := &BreakerNotifier{
		primary:       primary,
		fallback:      fallback,
		probeInterval: defaultProbeInterval,
		clock:         time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.breaker == nil {
		n.breaker = circuit.New("status-notifier")
	}
	return n
}

func (n *BreakerNotifier) NotifyStatusChanged(ctx context.Context, event models.StatusChanged) error {
	if n.breaker.IsOpen() && !n.probeDue() {
		return n.fallback.NotifyStatusChanged(ctx, event)
	}

	if err := n.primary.NotifyStatusChanged(ctx, event); err != nil {
		useFallback, change := n.breaker.RecordFailure()
		if change.Opened {
			n.markProbe()
			n.logger.WarnContext(ctx, "status change publishing degraded, using fallback",
				"breaker", n.breaker.Name(),
				"error", err,
			)
		}
		if useFallback {
			return n.fallback.NotifyStatusChanged(ctx, event)
		}
		return err
	}

	if _, change := n.breaker.RecordSuccess(); change.Closed {
		n.logger.InfoContext(ctx, "status change publishing recovered", "breaker", n.breaker.Name())
	}
	return nil
}

// Degraded reports whether events currently go to the fallback.
func (n *BreakerNotifier) Degraded() bool {
	return n.breaker.IsOpen()
}

func (n *BreakerNotifier) markProbe() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastProbe = n.clock()
}

func (n *BreakerNotifier) probeDue() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.clock()
	if now.Sub(n.lastProbe) < n.probeInterval {
		return false
	}
	n.lastProbe = now
	return true
}
