package lsm

import "sort"

// memtable is the in-memory write buffer: an ordered mapping from key to
// the most recent value written for that key during the current epoch,
// including tombstones. It is volatile — a process restart loses it.
type memtable struct {
	data      map[string][]byte
	keys      []string // insertion order; sorted lazily by sortedData/Scan
	keysSet   bool     // true while keys is sorted; cleared when a new key is appended
	sizeBytes int
	maxBytes  int
}

func newMemtable(maxBytes int) *memtable {
	return &memtable{
		data:     make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

// put inserts or replaces a key's value.
//
// Byte accounting intentionally mirrors the reference implementation's
// documented (and slightly surprising) behavior: on first insertion of a
// key, both the key and value bytes are added to sizeBytes. On a later
// replacement, only the delta in value length is applied — the key's bytes
// are never subtracted or re-added. This undercounts key bytes across
// replacements and can delay an auto-flush, but it does not affect
// lookup correctness, and reimplementations must preserve it rather than
// "fix" it.
func (mt *memtable) put(key, value []byte) {
	k := string(key)
	if prev, exists := mt.data[k]; exists {
		mt.sizeBytes -= len(prev)
		mt.sizeBytes += len(value)
		mt.data[k] = value
		return
	}
	mt.data[k] = value
	mt.keys = append(mt.keys, k)
	mt.keysSet = false
	mt.sizeBytes += len(k) + len(value)
}

// get returns (value, true) for a live key, including when value is the
// tombstone marker, and (nil, false) when the key has never been written
// during this epoch.
func (mt *memtable) get(key []byte) ([]byte, bool) {
	v, ok := mt.data[string(key)]
	return v, ok
}

// sortedKeys returns mt.keys sorted ascending, memoizing the sort until the
// next put invalidates it.
func (mt *memtable) sortedKeys() []string {
	if !mt.keysSet {
		sort.Strings(mt.keys)
		mt.keysSet = true
	}
	return mt.keys
}

// scan returns entries with start <= key <= end in ascending order, up to
// limit results. Tombstones are included; the engine interprets them.
func (mt *memtable) scan(start, end []byte, limit int) []Entry {
	startS, endS := string(start), string(end)
	out := make([]Entry, 0)
	for _, k := range mt.sortedKeys() {
		if k < startS {
			continue
		}
		if k > endS {
			break
		}
		out = append(out, Entry{Key: []byte(k), Value: mt.data[k]})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// shouldFlush reports whether the memtable has crossed its byte budget.
func (mt *memtable) shouldFlush() bool {
	return mt.sizeBytes >= mt.maxBytes
}

// sortedData snapshots the memtable as an ascending sequence of entries,
// suitable for handing straight to SSTable creation.
func (mt *memtable) sortedData() []Entry {
	keys := mt.sortedKeys()
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Key: []byte(k), Value: mt.data[k]}
	}
	return out
}

// clear empties the map and resets the byte count, used after a
// successful flush drains the memtable atomically from the caller's point
// of view.
func (mt *memtable) clear() {
	mt.data = make(map[string][]byte)
	mt.keys = mt.keys[:0]
	mt.keysSet = true
	mt.sizeBytes = 0
}

// size returns the current byte accounting, exposed for stats/tests.
func (mt *memtable) size() int {
	return mt.sizeBytes
}

// count returns the number of live keys, exposed for stats/tests.
func (mt *memtable) count() int {
	return len(mt.data)
}
