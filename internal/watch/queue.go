package watch

import "sync"

// Queue is an unbounded, mutex-guarded FIFO of canonical post URLs.
//
// Insertion order is discovery order. The queue does not deduplicate;
// dedup happens later at the ledger.
type Queue struct {
	mu    sync.Mutex
	items []string
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a URL to the queue.
func (q *Queue) Push(url string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, url)
}

// Pop removes and returns the oldest URL. The second return value is false
// when the queue is empty.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	url := q.items[0]
	q.items = q.items[1:]
	return url, true
}

// Len returns the number of queued URLs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
