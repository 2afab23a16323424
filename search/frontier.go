package search

import "container/heap"

type item[S any] struct {
	value    S
	priority float64
	seq      int
	index    int
}

// itemQueue is a min-heap on priority. Equal priorities pop in insertion
// order.
type itemQueue[S any] []*item[S]

func (pq itemQueue[S]) Len() int { return len(pq) }

func (pq itemQueue[S]) Less(i, j int) bool {
	if pq[i].priority == pq[j].priority {
		return pq[i].seq < pq[j].seq
	}
	return pq[i].priority < pq[j].priority
}

func (pq itemQueue[S]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *itemQueue[S]) Push(x any) {
	it := x.(*item[S])
	it.index = len(*pq)
	*pq = append(*pq, it)
}

func (pq *itemQueue[S]) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[:n-1]
	return it
}

type priorityFrontier[S any] struct {
	items itemQueue[S]
	seq   int
}

func newPriorityFrontier[S any]() *priorityFrontier[S] {
	f := &priorityFrontier[S]{}
	heap.Init(&f.items)
	return f
}

func (f *priorityFrontier[S]) Len() int { return f.items.Len() }

func (f *priorityFrontier[S]) push(s S, priority float64) {
	f.seq++
	heap.Push(&f.items, &item[S]{value: s, priority: priority, seq: f.seq})
}

func (f *priorityFrontier[S]) pop() S {
	return heap.Pop(&f.items).(*item[S]).value
}
