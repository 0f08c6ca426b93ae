package lsm

import "github.com/dd0wney/cluso-lsmkv/pkg/bloom"

// Magic identifies the SSTable file format: ASCII "SSTB", little-endian.
const Magic uint32 = 0x53535442

// headerSize is the fixed 12-byte prefix: magic(4) | num_entries(4) |
// bloom_offset(4).
const headerSize = 12

// sstable is an immutable file plus the in-memory handle described in the
// data model: file path, entry count, and a deserialized membership
// filter. Once written, an sstable file is never modified — only replaced
// by compaction's successor or removed outright.
type sstable struct {
	path       string
	entryCount int
	bloomOff   int64
	filter     *bloom.Filter
}

// Exported path/entryCount accessors; code inside this package reads the
// fields directly.
func (s *sstable) Path() string     { return s.path }
func (s *sstable) EntryCount() int { return s.entryCount }
