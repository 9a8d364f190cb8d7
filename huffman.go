package bzip2

import "container/heap"

// hnode is a leaf or merged subtree during Huffman construction.
type hnode struct {
	weight uint32
	depth  uint8 // height of the subtree
	id     int32
}

// nodeHeap is a min-heap of hnode by weight. Ties prefer the shallower
// subtree, then the lower id, so the result is deterministic.
type nodeHeap []hnode

// Len implements heap.Interface and returns the number of elements.
func (h nodeHeap) Len() int { return len(h) }

// Less implements heap.Interface ordering by ascending weight, then depth,
// then id.
func (h nodeHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	if h[i].depth != h[j].depth {
		return h[i].depth < h[j].depth
	}
	return h[i].id < h[j].id
}

// Swap implements heap.Interface swap.
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push implements heap.Interface push.
func (h *nodeHeap) Push(x any) { *h = append(*h, x.(hnode)) }

// Pop implements heap.Interface pop.
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// lengthBuilder computes length-limited Huffman code lengths. Its scratch
// space is reused across calls.
type lengthBuilder struct {
	heap    nodeHeap
	parent  [2 * maxAlphaSize]int32
	weights [maxAlphaSize]uint32
}

// build sets lengths[i] to the code length of symbol i given frequencies
// freq, with no length above maxLen. Every symbol gets a code, including
// those with zero frequency. When the optimal tree is too deep, all
// weights are roughly halved and the tree rebuilt, which flattens it.
func (b *lengthBuilder) build(lengths []uint8, freq []uint32, maxLen int) {
	w := b.weights[:len(freq)]
	for i, f := range freq {
		w[i] = max(f, 1)
	}
	for !b.try(lengths, w, maxLen) {
		for i := range w {
			w[i] = 1 + w[i]/2
		}
	}
}

func (b *lengthBuilder) try(lengths []uint8, w []uint32, maxLen int) bool {
	n := len(w)
	if n == 1 {
		lengths[0] = 1
		return true
	}
	b.heap = b.heap[:0]
	for i, x := range w {
		b.heap = append(b.heap, hnode{weight: x, id: int32(i)})
	}
	heap.Init(&b.heap)
	next := int32(n)
	for b.heap.Len() > 1 {
		x := heap.Pop(&b.heap).(hnode)
		y := heap.Pop(&b.heap).(hnode)
		b.parent[x.id] = next
		b.parent[y.id] = next
		heap.Push(&b.heap, hnode{
			weight: x.weight + y.weight,
			depth:  1 + max(x.depth, y.depth),
			id:     next,
		})
		next++
	}
	root := next - 1
	for i := range n {
		l := 0
		for j := int32(i); j != root; j = b.parent[j] {
			l++
		}
		if l > maxLen {
			return false
		}
		lengths[i] = uint8(l)
	}
	return true
}
