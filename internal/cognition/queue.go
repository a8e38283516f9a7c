package cognition

import (
	"container/heap"
	"sync"
	"time"
)

// PriorityQueue orders goals for processing: priority desc, enqueue time
// asc. The tie-break favors the goal that has waited longest so equal
// priorities never starve. Safe for concurrent use.
type PriorityQueue struct {
	mu sync.Mutex
	h  itemHeap
}

// NewPriorityQueue returns an empty queue.
func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{}
}

// Enqueue adds a goal with the given priority at now.
func (q *PriorityQueue) Enqueue(goalID string, priority int, now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.h, QueueItem{GoalID: goalID, Priority: priority, EnqueuedAt: now})
}

// Dequeue removes and returns the highest-priority item.
func (q *PriorityQueue) Dequeue() (QueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.h.Len() == 0 {
		return QueueItem{}, false
	}
	return heap.Pop(&q.h).(QueueItem), true
}

// Remove drops all entries for goalID (used when a goal reaches a terminal
// state outside its scheduled turn).
func (q *PriorityQueue) Remove(goalID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.h[:0]
	for _, it := range q.h {
		if it.GoalID != goalID {
			kept = append(kept, it)
		}
	}
	q.h = kept
	heap.Init(&q.h)
}

// Len returns the queued item count.
func (q *PriorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len()
}

// Snapshot returns the items in heap order (not sorted) for persistence.
func (q *PriorityQueue) Snapshot() []QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]QueueItem, len(q.h))
	copy(out, q.h)
	return out
}

// Rebuild replaces the queue contents from a persisted snapshot, deduping
// by goal id and keeping the entry with the most recent enqueue time.
func (q *PriorityQueue) Rebuild(items []QueueItem) {
	latest := make(map[string]QueueItem, len(items))
	for _, it := range items {
		prev, ok := latest[it.GoalID]
		if !ok || it.EnqueuedAt.After(prev.EnqueuedAt) {
			latest[it.GoalID] = it
		}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.h = q.h[:0]
	for _, it := range latest {
		q.h = append(q.h, it)
	}
	heap.Init(&q.h)
}

type itemHeap []QueueItem

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].EnqueuedAt.Before(h[j].EnqueuedAt)
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) { *h = append(*h, x.(QueueItem)) }

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
