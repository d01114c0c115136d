package clicks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Varun5711/shortlinks/internal/logger"
)

// Sink applies one click to the counter of a short code.
type Sink interface {
	IncrementClicks(ctx context.Context, shortCode string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, shortCode string) error

func (f SinkFunc) IncrementClicks(ctx context.Context, shortCode string) error {
	return f(ctx, shortCode)
}

type Config struct {
	Workers   int
	QueueSize int
	// Timeout bounds each sink call. The call never inherits the request context.
	Timeout time.Duration
}

// Accountant counts clicks off the request path. Record never blocks: when
// the queue is full the click is dropped. Sink errors are logged and the
// click is not retried, so every click is applied at most once.
type Accountant struct {
	sink    Sink
	timeout time.Duration
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan string
	wg     sync.WaitGroup

	recorded atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
}

func NewAccountant(sink Sink, cfg Config, log *logger.Logger) *Accountant {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	a := &Accountant{
		sink:    sink,
		timeout: cfg.Timeout,
		log:     log,
		queue:   make(chan string, cfg.QueueSize),
	}

	a.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go a.worker()
	}
	return a
}

// Record schedules one click for shortCode and returns immediately.
func (a *Accountant) Record(shortCode string) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.dropped.Add(1)
		return
	}

	select {
	case a.queue <- shortCode:
	default:
		a.dropped.Add(1)
		a.log.Warn("Click queue full, dropping click for %s", shortCode)
	}
}

func (a *Accountant) worker() {
	defer a.wg.Done()

	for shortCode := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.sink.IncrementClicks(ctx, shortCode)
		cancel()

		if err != nil {
			a.failed.Add(1)
			a.log.Error("Failed to increment clicks for %s: %v", shortCode, err)
			continue
		}
		a.recorded.Add(1)
	}
}

// Close stops accepting clicks and waits for queued ones to drain, or for ctx
// to expire.
func (a *Accountant) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Stats struct {
	Recorded int64 `json:"recorded"`
	Dropped  int64 `json:"dropped"`
	Failed   int64 `json:"failed"`
	Queued   int   `json:"queued"`
}

func (a *Accountant) Stats() Stats {
	return Stats{
		Recorded: a.recorded.Load(),
		Dropped:  a.dropped.Load(),
		Failed:   a.failed.Load(),
		Queued:   len(a.queue),
	}
}
