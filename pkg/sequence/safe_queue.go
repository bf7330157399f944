package sequence

import "sync"

// SafePriorityQueue wraps PriorityQueue with a reader/writer lock.
// Mutations take the write lock, queries take the read lock. Each lock is
// held for a single heap operation only. The comparator and the mutate
// function of UpdatePriority run under the write lock and must not call back
// into the queue; the ready function of DequeueIf runs unlocked.
type SafePriorityQueue[T Queueable] struct {
	mu sync.RWMutex
	pq *PriorityQueue[T]
}

// NewSafePriorityQueue creates an empty thread-safe queue ordered by less.
func NewSafePriorityQueue[T Queueable](less func(a, b T) bool) *SafePriorityQueue[T] {
	return &SafePriorityQueue[T]{pq: NewPriorityQueue(less)}
}

func (q *SafePriorityQueue[T]) Enqueue(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pq.Enqueue(item)
}

func (q *SafePriorityQueue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pq.Dequeue()
}

// DequeueIf removes the head only when ready reports true for it. ready is
// called with no lock held, so it may query the queue. If the head was
// replaced or re-enqueued before the removal, the new head is checked again.
func (q *SafePriorityQueue[T]) DequeueIf(ready func(T) bool) (T, bool) {
	var zero T
	for {
		head, seq, ok := q.peekSeq()
		if !ok || !ready(head) {
			return zero, false
		}

		q.mu.Lock()
		cur, ok := q.pq.Peek()
		if ok && cur == head && cur.QueueHandle().seq == seq {
			q.pq.Dequeue()
			q.mu.Unlock()
			return cur, true
		}
		q.mu.Unlock()
	}
}

func (q *SafePriorityQueue[T]) peekSeq() (T, uint64, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	head, ok := q.pq.Peek()
	if !ok {
		return head, 0, false
	}
	return head, head.QueueHandle().seq, true
}

func (q *SafePriorityQueue[T]) Remove(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pq.Remove(item)
}

// UpdatePriority applies mutate to item and restores heap order, all under
// the write lock, so concurrent readers never observe a half-updated heap.
// mutate must not call back into the queue.
func (q *SafePriorityQueue[T]) UpdatePriority(item T, mutate func(T)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.pq.Contains(item) {
		return false
	}
	if mutate != nil {
		mutate(item)
	}
	return q.pq.UpdatePriority(item)
}

func (q *SafePriorityQueue[T]) Clear() {
	q.mu.Lock()
	q.pq.Clear()
	q.mu.Unlock()
}

func (q *SafePriorityQueue[T]) Peek() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pq.Peek()
}

func (q *SafePriorityQueue[T]) Contains(item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pq.Contains(item)
}

func (q *SafePriorityQueue[T]) Count() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pq.Count()
}

func (q *SafePriorityQueue[T]) HasNext() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pq.HasNext()
}

func (q *SafePriorityQueue[T]) Items() []T {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pq.Items()
}

func (q *SafePriorityQueue[T]) IsValid() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.pq.IsValid()
}
