package sequence

import "errors"

// ErrAlreadyEnqueued is returned when an item's handle is still owned by a queue.
var ErrAlreadyEnqueued = errors.New("sequence: item is already enqueued")

// Handle is the back-reference a queue keeps on every enqueued item.
// It records the item's heap position and insertion sequence and is owned
// by at most one queue at a time.
type Handle struct {
	index int
	seq   uint64
	owner any
}

// Index returns the current 1-based heap position, or 0 when not enqueued.
func (h *Handle) Index() int { return h.index }

// Sequence returns the insertion/update sequence used to break priority ties.
func (h *Handle) Sequence() uint64 { return h.seq }

func (h *Handle) invalidate() {
	h.index = 0
	h.owner = nil
}

// Queueable is the constraint for items stored in a PriorityQueue.
type Queueable interface {
	comparable
	QueueHandle() *Handle
}

// PriorityQueue is a 1-indexed array-backed binary min-heap.
// Items carry a Handle, so Remove and UpdatePriority run in O(log n)
// without scanning. Items with equal priority keep their relative order.
type PriorityQueue[T Queueable] struct {
	nodes []T
	count int
	seq   uint64
	less  func(a, b T) bool
}

// NewPriorityQueue creates an empty queue ordered by less.
func NewPriorityQueue[T Queueable](less func(a, b T) bool) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		nodes: make([]T, 1, 16),
		less:  less,
	}
}

// Count returns the number of enqueued items.
func (pq *PriorityQueue[T]) Count() int { return pq.count }

// HasNext reports whether the queue is non-empty.
func (pq *PriorityQueue[T]) HasNext() bool { return pq.count > 0 }

// Contains reports whether item is enqueued in this queue.
func (pq *PriorityQueue[T]) Contains(item T) bool {
	h := item.QueueHandle()
	if h == nil || h.owner != any(pq) {
		return false
	}
	if h.index < 1 || h.index > pq.count {
		return false
	}
	return pq.nodes[h.index] == item
}

// Enqueue inserts item. It fails when the item is owned by any queue.
func (pq *PriorityQueue[T]) Enqueue(item T) error {
	h := item.QueueHandle()
	if h.owner != nil {
		return ErrAlreadyEnqueued
	}
	pq.count++
	pq.seq++
	h.owner = pq
	h.index = pq.count
	h.seq = pq.seq
	if pq.count < len(pq.nodes) {
		pq.nodes[pq.count] = item
	} else {
		pq.nodes = append(pq.nodes, item)
	}
	pq.cascadeUp(item)
	return nil
}

// Peek returns the head without removing it.
func (pq *PriorityQueue[T]) Peek() (T, bool) {
	if pq.count == 0 {
		var zero T
		return zero, false
	}
	return pq.nodes[1], true
}

// Dequeue removes and returns the head.
func (pq *PriorityQueue[T]) Dequeue() (T, bool) {
	if pq.count == 0 {
		var zero T
		return zero, false
	}
	head := pq.nodes[1]
	pq.Remove(head)
	return head, true
}

// Remove takes item out of the queue. It returns false when the item is not
// enqueued here.
func (pq *PriorityQueue[T]) Remove(item T) bool {
	if !pq.Contains(item) {
		return false
	}
	h := item.QueueHandle()
	idx := h.index
	last := pq.nodes[pq.count]
	var zero T
	pq.nodes[pq.count] = zero
	pq.count--
	h.invalidate()
	if idx > pq.count {
		return true
	}
	pq.nodes[idx] = last
	last.QueueHandle().index = idx
	pq.onNodeUpdated(last)
	return true
}

// UpdatePriority restores heap order after the caller changed the priority of
// item. The item receives a fresh sequence number, so it sorts after items of
// equal priority.
func (pq *PriorityQueue[T]) UpdatePriority(item T) bool {
	if !pq.Contains(item) {
		return false
	}
	pq.seq++
	item.QueueHandle().seq = pq.seq
	pq.onNodeUpdated(item)
	return true
}

// Clear empties the queue and invalidates every handle.
func (pq *PriorityQueue[T]) Clear() {
	var zero T
	for i := 1; i <= pq.count; i++ {
		pq.nodes[i].QueueHandle().invalidate()
		pq.nodes[i] = zero
	}
	pq.count = 0
}

// Items returns a snapshot of the enqueued items in heap order.
func (pq *PriorityQueue[T]) Items() []T {
	out := make([]T, pq.count)
	copy(out, pq.nodes[1:pq.count+1])
	return out
}

// IsValid reports whether every parent sorts before both of its children.
func (pq *PriorityQueue[T]) IsValid() bool {
	for i := 1; i <= pq.count; i++ {
		if pq.nodes[i].QueueHandle().index != i {
			return false
		}
		left := 2 * i
		if left <= pq.count && pq.higherPriority(pq.nodes[left], pq.nodes[i]) {
			return false
		}
		right := left + 1
		if right <= pq.count && pq.higherPriority(pq.nodes[right], pq.nodes[i]) {
			return false
		}
	}
	return true
}

// higherPriority reports whether a must be dequeued before b.
func (pq *PriorityQueue[T]) higherPriority(a, b T) bool {
	if pq.less(a, b) {
		return true
	}
	if pq.less(b, a) {
		return false
	}
	return a.QueueHandle().seq < b.QueueHandle().seq
}

func (pq *PriorityQueue[T]) onNodeUpdated(item T) {
	idx := item.QueueHandle().index
	parent := idx / 2
	if parent > 0 && pq.higherPriority(item, pq.nodes[parent]) {
		pq.cascadeUp(item)
		return
	}
	pq.cascadeDown(item)
}

func (pq *PriorityQueue[T]) swap(a, b T) {
	ha, hb := a.QueueHandle(), b.QueueHandle()
	pq.nodes[ha.index], pq.nodes[hb.index] = b, a
	ha.index, hb.index = hb.index, ha.index
}

func (pq *PriorityQueue[T]) cascadeUp(item T) {
	h := item.QueueHandle()
	for h.index > 1 {
		parent := pq.nodes[h.index/2]
		if !pq.higherPriority(item, parent) {
			return
		}
		pq.swap(item, parent)
	}
}

func (pq *PriorityQueue[T]) cascadeDown(item T) {
	h := item.QueueHandle()
	for {
		best := item
		left := 2 * h.index
		if left > pq.count {
			return
		}
		if pq.higherPriority(pq.nodes[left], best) {
			best = pq.nodes[left]
		}
		right := left + 1
		if right <= pq.count && pq.higherPriority(pq.nodes[right], best) {
			best = pq.nodes[right]
		}
		if best == item {
			return
		}
		pq.swap(item, best)
	}
}
