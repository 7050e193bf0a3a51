package balances

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/neptune-labs/intents-portal/chains"
	"github.com/zeebo/assert"
)

func TestPollerDeliversSnapshots(t *testing.T) {
	viewer := &fakeViewer{amount: big.NewInt(0).Mul(big.NewInt(4), exp10(24))}
	r := NewReconciler(chains.NewRegistry(), viewer, nil, nil)

	var mu sync.Mutex
	var snapshots []map[string]string
	got := make(chan struct{}, 16)

	p := NewPoller(r, map[string]string{"near": "alice.near"}, 10*time.Millisecond, func(balances map[string]string) {
		mu.Lock()
		snapshots = append(snapshots, balances)
		mu.Unlock()
		got <- struct{}{}
	})
	p.Start(context.Background())
	defer p.Stop()

	// immediate poll plus at least one tick
	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(2 * time.Second):
			t.Fatalf("poller delivered %d snapshots, want at least 2", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "4", snapshots[0]["[NEAR] NEAR"])
}

func TestPollerStopsCleanly(t *testing.T) {
	r := NewReconciler(chains.NewRegistry(), nil, nil, nil)
	p := NewPoller(r, nil, 5*time.Millisecond, nil)
	p.Start(context.Background())

	time.Sleep(20 * time.Millisecond)
	p.Stop()

	select {
	case <-p.stoppedCh:
	default:
		t.Fatal("poller goroutine still running after Stop")
	}

	// second Stop is a no-op
	p.Stop()
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewReconciler(chains.NewRegistry(), nil, nil, nil)
	p := NewPoller(r, nil, 5*time.Millisecond, nil)
	p.Start(ctx)

	cancel()
	select {
	case <-p.stoppedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not exit on context cancellation")
	}
}

func exp10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}
