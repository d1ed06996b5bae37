// Package watch implements the clipboard watch loop: a producer that samples
// an external text source on a timer and a consumer that drains the
// discovered links through the download pipeline.
package watch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/askoura/rednote-downloader/internal/progress"
	"github.com/atotto/clipboard"
)

// StopCommand is the sentinel clipboard value (case-insensitive) that stops
// the monitor, mirroring an explicit Stop call.
const StopCommand = "close"

// Config wires a Monitor's collaborators.
type Config struct {
	// Interval is the producer poll period and the consumer's idle wait.
	Interval time.Duration

	// ReadSource samples the external text source. Defaults to reading
	// the system clipboard.
	ReadSource func() (string, error)

	// Resolve turns sampled text into canonical post URLs.
	Resolve func(ctx context.Context, text string) []string

	// Handle processes one dequeued URL through the pipeline.
	Handle func(ctx context.Context, url string)

	// OnProgress receives diagnostic events. May be nil.
	OnProgress progress.Func
}

// Monitor runs a producer/consumer pair over a shared FIFO queue.
//
// The producer polls the text source every interval, debounces unchanged
// reads, and enqueues every resolved link. The consumer dequeues and handles
// links, and keeps draining after stop is requested: every link discovered
// before the stop is still processed before Run returns.
type Monitor struct {
	cfg      Config
	queue    *Queue
	stop     chan struct{}
	stopOnce sync.Once

	// lastSeen is only touched by the producer goroutine.
	lastSeen string
}

// NewMonitor creates a Monitor. A zero Interval defaults to one second.
func NewMonitor(cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.ReadSource == nil {
		cfg.ReadSource = clipboard.ReadAll
	}
	return &Monitor{
		cfg:   cfg,
		queue: NewQueue(),
		stop:  make(chan struct{}),
	}
}

// Stop requests a cooperative shutdown, equivalent to the clipboard sentinel.
// Work already dequeued finishes; queued links are still drained.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Run blocks until the monitor is stopped and the queue fully drained.
// Cancelling ctx is equivalent to calling Stop.
func (m *Monitor) Run(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			m.Stop()
		case <-m.stop:
		}
	}()

	// Handlers run on a detached context so a stop request doesn't abort
	// downloads for links that were discovered before the stop.
	handleCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.produce(ctx)
	}()
	go func() {
		defer wg.Done()
		m.consume(handleCtx)
	}()
	wg.Wait()
}

func (m *Monitor) stopped() bool {
	select {
	case <-m.stop:
		return true
	default:
		return false
	}
}

func (m *Monitor) produce(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}

		text, err := m.cfg.ReadSource()
		if err != nil {
			m.cfg.OnProgress.Emit(progress.LevelWarning, "could not read text source: %v", err)
			continue
		}
		if strings.EqualFold(strings.TrimSpace(text), StopCommand) {
			m.cfg.OnProgress.Emit(progress.LevelInfo, "stop command received")
			m.Stop()
			return
		}
		if text == m.lastSeen {
			continue
		}
		m.lastSeen = text

		for _, url := range m.cfg.Resolve(ctx, text) {
			m.queue.Push(url)
			m.cfg.OnProgress.Emit(progress.LevelVerbose, "queued %s", url)
		}
	}
}

func (m *Monitor) consume(ctx context.Context) {
	for {
		if url, ok := m.queue.Pop(); ok {
			m.cfg.Handle(ctx, url)
			continue
		}
		if m.stopped() {
			return
		}
		select {
		case <-m.stop:
		case <-time.After(m.cfg.Interval):
		}
	}
}
