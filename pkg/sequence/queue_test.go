package sequence

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	handle   Handle
	priority int
	label    string
}

func (n *node) QueueHandle() *Handle { return &n.handle }

func byPriority(a, b *node) bool { return a.priority < b.priority }

func newNodes(priorities ...int) []*node {
	out := make([]*node, len(priorities))
	for i, p := range priorities {
		out[i] = &node{priority: p}
	}
	return out
}

func TestPriorityQueueDequeueOrder(t *testing.T) {
	pq := NewPriorityQueue(byPriority)
	for _, n := range newNodes(5, 2, 0, 4, 8) {
		require.NoError(t, pq.Enqueue(n))
	}
	assert.True(t, pq.IsValid())

	var got []int
	for pq.HasNext() {
		n, ok := pq.Dequeue()
		require.True(t, ok)
		got = append(got, n.priority)
		assert.True(t, pq.IsValid())
	}
	assert.Equal(t, []int{0, 2, 4, 5, 8}, got)

	_, ok := pq.Dequeue()
	assert.False(t, ok)
}

func TestPriorityQueueStableTies(t *testing.T) {
	pq := NewPriorityQueue(byPriority)
	labels := []string{"a", "b", "c", "d"}
	for _, l := range labels {
		require.NoError(t, pq.Enqueue(&node{priority: 1, label: l}))
	}
	var got []string
	for pq.HasNext() {
		n, _ := pq.Dequeue()
		got = append(got, n.label)
	}
	assert.Equal(t, labels, got)
}

func TestPriorityQueueRemove(t *testing.T) {
	pq := NewPriorityQueue(byPriority)
	nodes := newNodes(5, 2, 0, 4, 8, 7, 1)
	for _, n := range nodes {
		require.NoError(t, pq.Enqueue(n))
	}

	before := pq.Count()
	assert.True(t, pq.Remove(nodes[3]))
	assert.Equal(t, before-1, pq.Count())
	assert.False(t, pq.Contains(nodes[3]))
	assert.Zero(t, nodes[3].handle.Index())
	assert.True(t, pq.IsValid())

	assert.False(t, pq.Remove(nodes[3]), "second remove is a no-op")
	assert.Equal(t, before-1, pq.Count())

	head, ok := pq.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, head.priority)
}

func TestPriorityQueueRemoveTail(t *testing.T) {
	pq := NewPriorityQueue(byPriority)
	nodes := newNodes(1, 2, 3)
	for _, n := range nodes {
		require.NoError(t, pq.Enqueue(n))
	}
	assert.True(t, pq.Remove(nodes[2]))
	assert.Equal(t, 2, pq.Count())
	assert.True(t, pq.IsValid())
}

func TestPriorityQueueUpdatePriority(t *testing.T) {
	pq := NewPriorityQueue(byPriority)
	nodes := newNodes(5, 2, 0, 4, 8)
	for _, n := range nodes {
		require.NoError(t, pq.Enqueue(n))
	}

	nodes[4].priority = -1
	assert.True(t, pq.UpdatePriority(nodes[4]))
	assert.True(t, pq.IsValid())
	head, _ := pq.Peek()
	assert.Same(t, nodes[4], head)

	nodes[4].priority = 100
	assert.True(t, pq.UpdatePriority(nodes[4]))
	assert.True(t, pq.IsValid())
	head, _ = pq.Peek()
	assert.Same(t, nodes[2], head)

	assert.False(t, pq.UpdatePriority(&node{}))
}

func TestPriorityQueueHandleOwnership(t *testing.T) {
	a := NewPriorityQueue(byPriority)
	b := NewPriorityQueue(byPriority)
	n := &node{priority: 1}

	require.NoError(t, a.Enqueue(n))
	assert.ErrorIs(t, a.Enqueue(n), ErrAlreadyEnqueued)
	assert.ErrorIs(t, b.Enqueue(n), ErrAlreadyEnqueued)
	assert.False(t, b.Contains(n))
	assert.False(t, b.Remove(n))

	_, ok := a.Dequeue()
	require.True(t, ok)
	assert.NoError(t, b.Enqueue(n))
	assert.True(t, b.Contains(n))
}

func TestPriorityQueueClear(t *testing.T) {
	pq := NewPriorityQueue(byPriority)
	nodes := newNodes(3, 1, 2)
	for _, n := range nodes {
		require.NoError(t, pq.Enqueue(n))
	}
	pq.Clear()
	assert.Zero(t, pq.Count())
	for _, n := range nodes {
		assert.False(t, pq.Contains(n))
		assert.NoError(t, pq.Enqueue(n), "cleared items can be reused")
	}
}

func TestPriorityQueueRandomOperationsStayValid(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	pq := NewPriorityQueue(byPriority)
	var live []*node

	for i := 0; i < 2000; i++ {
		switch op := rnd.Intn(4); {
		case op == 0 || len(live) == 0:
			n := &node{priority: rnd.Intn(50)}
			require.NoError(t, pq.Enqueue(n))
			live = append(live, n)
		case op == 1:
			n, ok := pq.Dequeue()
			require.True(t, ok)
			live = removeNode(live, n)
		case op == 2:
			idx := rnd.Intn(len(live))
			require.True(t, pq.Remove(live[idx]))
			live = append(live[:idx], live[idx+1:]...)
		default:
			n := live[rnd.Intn(len(live))]
			n.priority = rnd.Intn(50)
			require.True(t, pq.UpdatePriority(n))
		}
		require.True(t, pq.IsValid(), "heap invalid after step %d", i)
		require.Equal(t, len(live), pq.Count())
	}
}

func removeNode(list []*node, n *node) []*node {
	for i, v := range list {
		if v == n {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func TestSafePriorityQueueConcurrentUse(t *testing.T) {
	q := NewSafePriorityQueue(byPriority)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				n := &node{priority: rnd.Intn(100)}
				_ = q.Enqueue(n)
				_ = q.Count()
				_, _ = q.Peek()
				if i%3 == 0 {
					q.Remove(n)
				}
				if i%5 == 0 {
					q.UpdatePriority(n, func(n *node) { n.priority = rnd.Intn(100) })
				}
			}
		}(int64(w))
	}
	wg.Wait()
	assert.True(t, q.IsValid())

	prev := -1
	for q.HasNext() {
		n, ok := q.Dequeue()
		require.True(t, ok)
		assert.GreaterOrEqual(t, n.priority, prev)
		prev = n.priority
	}
}

func TestSafePriorityQueueDequeueIf(t *testing.T) {
	q := NewSafePriorityQueue(byPriority)
	require.NoError(t, q.Enqueue(&node{priority: 10}))

	_, ok := q.DequeueIf(func(n *node) bool { return n.priority < 5 })
	assert.False(t, ok)
	assert.Equal(t, 1, q.Count())

	n, ok := q.DequeueIf(func(n *node) bool { return n.priority < 50 })
	assert.True(t, ok)
	assert.Equal(t, 10, n.priority)
	assert.False(t, q.HasNext())
}

func TestSafePriorityQueueDequeueIfMayQueryTheQueue(t *testing.T) {
	q := NewSafePriorityQueue(byPriority)
	require.NoError(t, q.Enqueue(&node{priority: 1, label: "a"}))
	require.NoError(t, q.Enqueue(&node{priority: 2, label: "b"}))

	done := make(chan *node, 1)
	go func() {
		n, _ := q.DequeueIf(func(head *node) bool {
			return q.Count() > 1 && q.Contains(head)
		})
		done <- n
	}()

	select {
	case n := <-done:
		require.NotNil(t, n)
		assert.Equal(t, "a", n.label)
	case <-time.After(2 * time.Second):
		t.Fatal("DequeueIf did not return while its callback queried the queue")
	}
	assert.Equal(t, 1, q.Count())
}

func TestSafePriorityQueueDequeueIfRechecksReplacedHead(t *testing.T) {
	q := NewSafePriorityQueue(byPriority)
	first := &node{priority: 5, label: "first"}
	require.NoError(t, q.Enqueue(first))

	calls := 0
	n, ok := q.DequeueIf(func(head *node) bool {
		calls++
		if calls == 1 {
			require.NoError(t, q.Enqueue(&node{priority: 1, label: "urgent"}))
		}
		return true
	})
	require.True(t, ok)
	assert.Equal(t, "urgent", n.label)
	assert.Equal(t, 2, calls)
	assert.True(t, q.Contains(first))
	assert.True(t, q.IsValid())
}
