package lsm

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/dd0wney/cluso-lsmkv/pkg/bloom"
)

// createSSTableFromSortedData writes sorted, unique-key entries to path in
// one pass: it reserves the 12-byte header, streams entries while adding
// each key to a freshly allocated membership filter, writes the serialized
// filter, and finally backpatches the header with the real entry count and
// bloom offset.
//
// On any I/O failure before completion the partial file is removed so it
// is never mistaken for a valid table and never installed into a tier.
func createSSTableFromSortedData(path string, entries []Entry, width uint64, hashCount int) (*sstable, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)

	// Reserve the header; it is backpatched once the real offsets are
	// known.
	if _, err := w.Write(make([]byte, headerSize)); err != nil {
		return nil, err
	}

	filter := bloom.New(width, hashCount)
	offset := int64(headerSize)

	for _, e := range entries {
		n, err := writeEntry(w, e)
		if err != nil {
			return nil, err
		}
		filter.Add(e.Key)
		offset += int64(n)
	}

	bloomOffset := offset
	filterBytes := filter.Serialize()
	if _, err := w.Write(filterBytes); err != nil {
		return nil, err
	}

	if err := w.Flush(); err != nil {
		return nil, err
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(entries)))
	binary.LittleEndian.PutUint32(header[8:12], uint32(bloomOffset))

	if _, err := f.WriteAt(header, 0); err != nil {
		return nil, err
	}
	if err := f.Sync(); err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	ok = true
	return &sstable{
		path:       path,
		entryCount: len(entries),
		bloomOff:   bloomOffset,
		filter:     filter,
	}, nil
}

// writeEntry writes one entry as: uint32 key_size | uint32 value_size |
// key bytes | value bytes, with no padding or separators. It returns the
// number of bytes written.
func writeEntry(w *bufio.Writer, e Entry) (int, error) {
	var lenbuf [8]byte
	binary.LittleEndian.PutUint32(lenbuf[0:4], uint32(len(e.Key)))
	binary.LittleEndian.PutUint32(lenbuf[4:8], uint32(len(e.Value)))

	if _, err := w.Write(lenbuf[:]); err != nil {
		return 0, err
	}
	if _, err := w.Write(e.Key); err != nil {
		return 0, err
	}
	if _, err := w.Write(e.Value); err != nil {
		return 0, err
	}
	return 8 + len(e.Key) + len(e.Value), nil
}
