package lsm

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/dd0wney/cluso-lsmkv/pkg/bloom"
)

// openSSTable opens an existing table, reads its header and trailing
// membership filter into memory, and returns a handle. It does not keep the
// underlying file open between calls — Get/Scan/iterators each open their
// own handle, matching the single-threaded, no-shared-descriptor model.
func openSSTable(path string, width uint64, hashCount int) (*sstable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, headerSize)
	if _, err := readFull(f, header, 0); err != nil {
		return nil, fmt.Errorf("sstable %s: truncated header: %w", path, err)
	}

	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != Magic {
		return nil, fmt.Errorf("sstable %s: bad magic %#x", path, magic)
	}
	numEntries := binary.LittleEndian.Uint32(header[4:8])
	bloomOffset := binary.LittleEndian.Uint32(header[8:12])

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	filterLen := info.Size() - int64(bloomOffset)
	if filterLen < 0 {
		return nil, fmt.Errorf("sstable %s: bloom offset past EOF", path)
	}
	filterBytes := make([]byte, filterLen)
	if _, err := readFull(f, filterBytes, int64(bloomOffset)); err != nil {
		return nil, fmt.Errorf("sstable %s: truncated filter: %w", path, err)
	}

	return &sstable{
		path:       path,
		entryCount: int(numEntries),
		bloomOff:   int64(bloomOffset),
		filter:     bloom.Deserialize(filterBytes, width, hashCount),
	}, nil
}

func readFull(f *os.File, buf []byte, at int64) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := f.ReadAt(buf[n:], at+int64(n))
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// entryHeader is the key_size/value_size pair preceding every entry.
type entryHeader struct {
	keySize   uint32
	valueSize uint32
}

func readEntryHeaderAt(f *os.File, offset int64) (entryHeader, error) {
	var buf [8]byte
	if _, err := readFull(f, buf[:], offset); err != nil {
		return entryHeader{}, err
	}
	return entryHeader{
		keySize:   binary.LittleEndian.Uint32(buf[0:4]),
		valueSize: binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// entryAt reads the full entry (key and value) whose header starts at
// offset, returning the entry and the offset just past it.
func entryAt(f *os.File, offset int64) (Entry, int64, error) {
	h, err := readEntryHeaderAt(f, offset)
	if err != nil {
		return Entry{}, 0, err
	}
	body := make([]byte, int(h.keySize)+int(h.valueSize))
	if _, err := readFull(f, body, offset+8); err != nil {
		return Entry{}, 0, err
	}
	e := Entry{Key: body[:h.keySize], Value: body[h.keySize:]}
	return e, offset + 8 + int64(h.keySize) + int64(h.valueSize), nil
}

// Get performs a point lookup. It first consults the in-memory membership
// filter; on a negative result it returns a miss without touching the
// file. Otherwise it binary-searches the entry index [0, entryCount) by
// repeatedly seeking to the header end and linearly skipping entries to
// reach the midpoint, matching the reference implementation's
// intentionally simple O(n)-per-probe design (the filter is the primary
// cost saver, not the search).
//
// Any I/O failure while reading the file is treated as a miss rather than
// propagated, per the engine's error-handling contract: a broken source is
// skipped, not fatal.
func (s *sstable) Get(key []byte) ([]byte, bool) {
	if s.filter != nil && !s.filter.MightContain(key) {
		return nil, false
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	lo, hi := 0, s.entryCount
	for lo < hi {
		mid := (lo + hi) / 2

		offset := int64(headerSize)
		skipOK := true
		for i := 0; i < mid; i++ {
			h, err := readEntryHeaderAt(f, offset)
			if err != nil {
				skipOK = false
				break
			}
			offset += 8 + int64(h.keySize) + int64(h.valueSize)
		}
		if !skipOK {
			return nil, false
		}

		entry, _, err := entryAt(f, offset)
		if err != nil {
			return nil, false
		}

		switch {
		case string(entry.Key) == string(key):
			return entry.Value, true
		case string(entry.Key) < string(key):
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return nil, false
}

// Scan streams entries from the data region in file order, skipping keys
// below start, stopping once a key exceeds end, the limit is reached, or
// the data region is exhausted. Any I/O error truncates the result rather
// than surfacing to the caller.
func (s *sstable) Scan(start, end []byte, limit int) []Entry {
	f, err := os.Open(s.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	out := make([]Entry, 0)
	offset := int64(headerSize)
	for offset < s.bloomOff {
		entry, next, err := entryAt(f, offset)
		if err != nil {
			break
		}
		offset = next

		if string(entry.Key) < string(start) {
			continue
		}
		if string(entry.Key) > string(end) {
			break
		}
		out = append(out, entry)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// tableIterator is a forward iterator over one sstable's data region,
// tagged with an opaque recency order (see compactTier for how orders are
// assigned). Its file handle is owned exclusively by the iterator and closed
// when exhausted or explicitly closed.
type tableIterator struct {
	f      *os.File
	offset int64
	end    int64
	order  int
	err    error
}

func newTableIterator(s *sstable, order int) (*tableIterator, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	return &tableIterator{f: f, offset: headerSize, end: s.bloomOff, order: order}, nil
}

func (it *tableIterator) hasNext() bool {
	return it.err == nil && it.offset < it.end
}

func (it *tableIterator) next() (Entry, bool) {
	if !it.hasNext() {
		return Entry{}, false
	}
	entry, next, err := entryAt(it.f, it.offset)
	if err != nil {
		it.err = err
		it.close()
		return Entry{}, false
	}
	it.offset = next
	if !it.hasNext() {
		it.close()
	}
	return entry, true
}

func (it *tableIterator) close() {
	if it.f != nil {
		it.f.Close()
		it.f = nil
	}
}
