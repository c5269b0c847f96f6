package boot

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/lingopal/lingopal-client/internal/logging"
)

// ConnState is the connectivity watcher's view of the backend.
type ConnState string

const (
	ConnUnknown ConnState = "unknown"
	ConnOnline  ConnState = "online"
	ConnOffline ConnState = "offline"
)

// Pinger probes backend reachability. The main API client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityWatcher periodically probes the backend and reports state
// transitions. It runs independently of the boot sequencer: while offline
// the UI gates on a connectivity screen, but the boot result is held, not
// discarded, and applies once connectivity returns.
type ConnectivityWatcher struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger
	onChange func(ConnState)

	mu    sync.Mutex
	state ConnState
}

func NewConnectivityWatcher(pinger Pinger, interval time.Duration, onChange func(ConnState), log logging.Logger) *ConnectivityWatcher {
	return &ConnectivityWatcher{
		pinger:   pinger,
		interval: interval,
		log:      log,
		onChange: onChange,
		state:    ConnUnknown,
	}
}

// State returns the last observed connectivity state.
func (w *ConnectivityWatcher) State() ConnState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Run probes immediately and then on every interval tick until ctx is
// cancelled.
func (w *ConnectivityWatcher) Run(ctx context.Context) {
	w.probe(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// probe pings the backend, retrying transient failures with a short
// exponential backoff before declaring the state offline.
func (w *ConnectivityWatcher) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(probeCtx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(w.pinger.Ping(ctx))
	})

	if err != nil {
		w.transition(ctx, ConnOffline)
	} else {
		w.transition(ctx, ConnOnline)
	}
}

func (w *ConnectivityWatcher) transition(ctx context.Context, next ConnState) {
	w.mu.Lock()
	prev := w.state
	w.state = next
	w.mu.Unlock()

	if prev == next {
		return
	}
	w.log.Info(ctx, "connectivity changed", "from", prev, "to", next)
	if w.onChange != nil {
		w.onChange(next)
	}
}
