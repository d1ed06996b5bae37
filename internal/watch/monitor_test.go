package watch

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	q.Push("a")
	q.Push("b")
	q.Push("c")

	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

// scriptedSource returns one element of script per call, then keeps
// returning the last element.
func scriptedSource(script ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		s := script[i]
		if i < len(script)-1 {
			i++
		}
		return s, nil
	}
}

func splitResolve(_ context.Context, text string) []string {
	return strings.Fields(text)
}

func TestMonitor_StopSentinelDrainsQueue(t *testing.T) {
	var mu sync.Mutex
	var handled []string

	m := NewMonitor(Config{
		Interval:   time.Millisecond,
		ReadSource: scriptedSource("link1 link2 link3", StopCommand),
		Resolve:    splitResolve,
		Handle: func(_ context.Context, url string) {
			mu.Lock()
			handled = append(handled, url)
			mu.Unlock()
		},
	})

	done := make(chan struct{})
	go func() {
		m.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"link1", "link2", "link3"}, handled,
		"links discovered before the stop are processed, in order")
}

func TestMonitor_StopSentinelCaseInsensitive(t *testing.T) {
	m := NewMonitor(Config{
		Interval:   time.Millisecond,
		ReadSource: scriptedSource("  Close  "),
		Resolve:    splitResolve,
		Handle:     func(context.Context, string) {},
	})

	done := make(chan struct{})
	go func() {
		m.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestMonitor_DebouncesUnchangedReads(t *testing.T) {
	var mu sync.Mutex
	count := 0

	m := NewMonitor(Config{
		Interval:   time.Millisecond,
		ReadSource: scriptedSource("link1"),
		Resolve:    splitResolve,
		Handle: func(context.Context, string) {
			mu.Lock()
			count++
			mu.Unlock()
		},
	})

	go m.Run(context.Background())
	time.Sleep(50 * time.Millisecond)
	m.Stop()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count, "an unchanged clipboard value is handled once")
}

func TestMonitor_ContextCancelStops(t *testing.T) {
	m := NewMonitor(Config{
		Interval:   time.Millisecond,
		ReadSource: scriptedSource("nothing here"),
		Resolve:    func(context.Context, string) []string { return nil },
		Handle:     func(context.Context, string) {},
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop on context cancel")
	}
}

func TestMonitor_HandlerOutlivesStop(t *testing.T) {
	// A link dequeued before the stop must see a live context even after
	// the parent context is cancelled.
	handledErr := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())

	m := NewMonitor(Config{
		Interval:   time.Millisecond,
		ReadSource: scriptedSource("link1", StopCommand),
		Resolve:    splitResolve,
		Handle: func(hctx context.Context, _ string) {
			cancel()
			time.Sleep(10 * time.Millisecond)
			handledErr <- hctx.Err()
		},
	})

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop")
	}

	assert.NoError(t, <-handledErr, "handler context must not be cancelled by the stop")
}
