package alert

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// closeGrace is how long Close lets pending deliveries finish before
// cancelling them.
var closeGrace = 2 * time.Second

// Dispatcher fans out events to matching webhook configurations. Deliveries
// run in the background under a context that Close cancels.
type Dispatcher struct {
	configs []Config
	client  *http.Client
	logger  logr.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher from webhook configurations. A nil
// client gets a 5s timeout. Returns nil if configs is empty (callers should
// nil-check).
func NewDispatcher(configs []Config, client *http.Client, logger logr.Logger) *Dispatcher {
	if len(configs) == 0 {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		configs: configs,
		client:  client,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Dispatch sends the event to all webhooks whose Events list matches,
// without blocking the caller. Events dispatched after Close are dropped.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	for _, cfg := range d.configs {
		if !matches(cfg.Events, event) {
			continue
		}
		d.wg.Add(1)
		go d.deliver(cfg, event)
	}
}

func (d *Dispatcher) deliver(cfg Config, event Event) {
	defer d.wg.Done()
	if err := Send(d.ctx, d.client, cfg, event); err != nil {
		d.logger.Error(err, "alert delivery failed", "url", cfg.URL, "event", event.Event)
	}
}

// Wait blocks until every dispatched delivery has finished or been
// cancelled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting events, gives pending deliveries a short grace
// period, then cancels whatever is still in flight and waits for it.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(closeGrace):
		d.cancel()
		<-done
	}
	d.cancel()
}

func matches(events []string, event Event) bool {
	for _, e := range events {
		if e == event.Event {
			return true
		}
	}
	return false
}
