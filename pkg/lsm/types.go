// Package lsm implements an embedded, single-process, ordered key-value
// store as a log-structured merge tree over a local filesystem directory.
//
// Writes land in an in-memory memtable; once it crosses a byte threshold it
// is frozen and flushed to an immutable, sorted, self-describing SSTable in
// tier 0. When a tier accumulates enough files it is compacted by a k-way
// merge into a single file promoted to the next tier. Reads consult the
// memtable, then each tier from newest to oldest.
package lsm

// Tombstone is the distinguished value marking a key as deleted. The public
// Engine API maps a hit on this value to an absent-key response; callers
// that need to store this exact 13-byte string as real data cannot, by
// construction, distinguish it from a deletion.
const Tombstone = "__TOMBSTONE__"

// Entry is a single logical (key, value) record.
type Entry struct {
	Key   []byte
	Value []byte
}

// IsTombstone reports whether e's value is the deletion marker.
func (e Entry) IsTombstone() bool {
	return string(e.Value) == Tombstone
}

// Default tunables, see Options.
const (
	DefaultMemtableFlushBytes = 4 * 1024 * 1024 // 4 MiB
	DefaultTierCompactionSize = 10               // files per tier before compaction
	DefaultFilterWidth        = 1 << 20          // bits
	DefaultFilterHashCount    = 3                // probes per key
	DefaultScanLimit          = 1000
)

// Options configures an Engine. Every field is a construction-time
// tunable rather than a compile-time constant, so tests can exercise small
// thresholds without touching engine internals.
type Options struct {
	// MemtableFlushBytes is the byte budget of the memtable before an
	// automatic flush is triggered by Put/Remove.
	MemtableFlushBytes int

	// TierCompactionSize is the number of SSTables a tier may hold before
	// it is compacted into the next tier. Must be >= 2: a threshold of 1
	// would compact every single flush forever and never converge.
	TierCompactionSize int

	// FilterWidth is the number of bits in each SSTable's membership
	// filter.
	FilterWidth uint64

	// FilterHashCount is the number of hash probes per key.
	FilterHashCount int

	// ScanDefaultLimit caps Scan results when the caller passes limit <= 0.
	ScanDefaultLimit int
}

// DefaultOptions returns the reference tunables from section 6 of the
// engine's design: a 4MiB memtable, ten files per tier, a 2^20-bit filter
// with three hashes, and a default scan limit of 1000.
func DefaultOptions() Options {
	return Options{
		MemtableFlushBytes: DefaultMemtableFlushBytes,
		TierCompactionSize: DefaultTierCompactionSize,
		FilterWidth:        DefaultFilterWidth,
		FilterHashCount:    DefaultFilterHashCount,
		ScanDefaultLimit:   DefaultScanLimit,
	}
}

// withDefaults fills in zero-valued fields with the reference defaults and
// clamps TierCompactionSize to the minimum that still terminates.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MemtableFlushBytes <= 0 {
		o.MemtableFlushBytes = d.MemtableFlushBytes
	}
	if o.TierCompactionSize <= 0 {
		o.TierCompactionSize = d.TierCompactionSize
	}
	if o.TierCompactionSize < 2 {
		o.TierCompactionSize = 2
	}
	if o.FilterWidth == 0 {
		o.FilterWidth = d.FilterWidth
	}
	if o.FilterHashCount <= 0 {
		o.FilterHashCount = d.FilterHashCount
	}
	if o.ScanDefaultLimit <= 0 {
		o.ScanDefaultLimit = d.ScanDefaultLimit
	}
	return o
}
