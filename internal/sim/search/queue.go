package search

import "container/heap"

// entry is a frontier slot. seq is the insertion counter; among equal f the
// earliest pushed entry pops first.
type entry struct {
	node int
	f    int
	seq  uint64
}

type frontier []entry

func (q frontier) Len() int { return len(q) }
func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontier) Push(x any) { *q = append(*q, x.(entry)) }

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

type openSet struct {
	q   frontier
	seq uint64
}

func (o *openSet) push(node, f int) {
	heap.Push(&o.q, entry{node: node, f: f, seq: o.seq})
	o.seq++
}

func (o *openSet) pop() (int, bool) {
	if o.q.Len() == 0 {
		return 0, false
	}
	return heap.Pop(&o.q).(entry).node, true
}

func (o *openSet) len() int { return o.q.Len() }
