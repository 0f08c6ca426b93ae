package lsm

import "container/heap"

// mergeItem is one head-of-iterator record staged in the merge heap,
// tagged with the opaque recency order of its source (smaller = newer).
type mergeItem struct {
	entry   Entry
	order   int
	iterIdx int
}

// mergeHeap orders items by key ascending, breaking ties by order
// ascending so the newest duplicate always surfaces first.
type mergeHeap []mergeItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if c := compareBytes(h[i].entry.Key, h[j].entry.Key); c != 0 {
		return c < 0
	}
	return h[i].order < h[j].order
}
func (h mergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)        { *h = append(*h, x.(mergeItem)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func compareBytes(a, b []byte) int {
	switch {
	case string(a) < string(b):
		return -1
	case string(a) > string(b):
		return 1
	default:
		return 0
	}
}

// mergeSources performs a k-way merge of tagged iterators into a single
// key-ascending, unique-key stream. Every source is a (iterator, order)
// pair; smaller order wins on duplicate keys. Values are collapsed at
// merge time by pulling the whole run of heap entries that share the
// current minimum key and keeping only the one with smallest order —
// equivalent to the pop/drain/emit/advance sequence in the package design,
// since draining and re-pushing every same-key entry (including the one
// that set the current minimum) commutes with popping it up front.
func mergeSources(iters []*tableIterator) []Entry {
	h := make(mergeHeap, 0, len(iters))
	for i, it := range iters {
		if e, ok := it.next(); ok {
			h = append(h, mergeItem{entry: e, order: it.order, iterIdx: i})
		}
	}
	heap.Init(&h)

	out := make([]Entry, 0)
	for h.Len() > 0 {
		key := append([]byte(nil), h[0].entry.Key...)

		var bestValue []byte
		bestOrder := -1
		for h.Len() > 0 && compareBytes(h[0].entry.Key, key) == 0 {
			item := heap.Pop(&h).(mergeItem)
			if bestOrder == -1 || item.order < bestOrder {
				bestOrder = item.order
				bestValue = item.entry.Value
			}
			if next, ok := iters[item.iterIdx].next(); ok {
				heap.Push(&h, mergeItem{entry: next, order: iters[item.iterIdx].order, iterIdx: item.iterIdx})
			}
		}

		out = append(out, Entry{Key: key, Value: bestValue})
	}
	return out
}
