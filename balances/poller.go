package balances

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is how often a connected wallet's balances refresh.
const DefaultPollInterval = 30 * time.Second

// Poller refreshes a connected wallet's balances on a fixed interval and
// delivers each snapshot to a callback. It runs until Stop is called or the
// owning context is cancelled, whichever comes first.
type Poller struct {
	reconciler *Reconciler
	interval   time.Duration
	addresses  map[string]string
	onUpdate   func(map[string]string)

	stopCh    chan struct{}
	stoppedCh chan struct{}
	isRunning bool
	mu        sync.Mutex
}

// NewPoller creates a poller for the given wallet addresses. An interval of
// zero or less falls back to DefaultPollInterval.
func NewPoller(reconciler *Reconciler, addressesByChain map[string]string, interval time.Duration, onUpdate func(map[string]string)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		reconciler: reconciler,
		interval:   interval,
		addresses:  addressesByChain,
		onUpdate:   onUpdate,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// Start launches the polling goroutine. An immediate first reconcile runs
// before the ticker takes over. Starting twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = true
	p.mu.Unlock()

	go func() {
		defer close(p.stoppedCh)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.poll(ctx)
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Stop halts polling and waits for the goroutine to exit, releasing its
// timer. Stopping a poller that never started, or stopping twice, is safe.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	p.mu.Unlock()

	close(p.stopCh)
	<-p.stoppedCh
}

func (p *Poller) poll(ctx context.Context) {
	balances, err := p.reconciler.Reconcile(ctx, p.addresses)
	if err != nil {
		log.Warn().Err(err).Msg("Balance poll failed")
		return
	}
	if p.onUpdate != nil {
		p.onUpdate(balances)
	}
}
