package lsm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dd0wney/cluso-lsmkv/pkg/logging"
	"github.com/dd0wney/cluso-lsmkv/pkg/metrics"
)

// Engine owns one memtable and a sequence of tiers, each tier being an
// ordered list of SSTable handles, over a single data directory. It is
// single-threaded and synchronous: every public method runs to completion
// on the caller's goroutine, including any flush or compaction it
// triggers. It provides no concurrency control of its own — callers that
// share an Engine across goroutines must serialize access themselves.
type Engine struct {
	dir   string
	opts  Options
	mt    *memtable
	tiers [][]*sstable

	seq int // filename disambiguator for sub-millisecond bursts

	log     logging.Logger
	metrics *metrics.Registry
}

// Open creates dir if missing and returns an Engine with an empty memtable
// and a single empty tier. It does not rediscover any pre-existing .sst
// files in dir — per the engine's non-goals, tier membership is not
// reconstructed from disk, so files left over from a prior process become
// orphans until a higher layer cleans them up.
func Open(dir string, opts Options) (*Engine, error) {
	if dir == "" {
		return nil, ErrDataDirRequired
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()

	return &Engine{
		dir:     dir,
		opts:    opts,
		mt:      newMemtable(opts.MemtableFlushBytes),
		tiers:   [][]*sstable{{}},
		log:     logging.NewNop(),
		metrics: metrics.New(),
	}, nil
}

// SetLogger installs a structured logger for flush/compaction diagnostics.
// Engines default to a no-op logger.
func (e *Engine) SetLogger(l logging.Logger) { e.log = l }

// Metrics exposes the engine's Prometheus registry for a higher layer to
// scrape or serve.
func (e *Engine) Metrics() *metrics.Registry { return e.metrics }

// Close releases resources. It does not flush; callers that need pending
// writes durable must call ManualFlush first.
func (e *Engine) Close() error {
	return nil
}

// Put inserts or overwrites key with value, flushing the memtable inline
// if it has crossed its byte budget.
func (e *Engine) Put(key, value []byte) error {
	e.mt.put(key, value)
	e.metrics.WritesTotal.Inc()
	e.metrics.BytesWritten.Add(float64(len(key) + len(value)))
	e.metrics.MemtableSizeBytes.Set(float64(e.mt.size()))
	if e.mt.shouldFlush() {
		if err := e.flush(); err != nil {
			return err
		}
	}
	return nil
}

// Remove writes a tombstone for key, flushing inline under the same
// condition as Put.
func (e *Engine) Remove(key []byte) error {
	return e.Put(key, []byte(Tombstone))
}

// Get resolves key against the memtable, then each tier newest to oldest
// within the tier (last list position first), stopping at the first hit.
// A hit whose value is the tombstone marker maps to a miss, so callers
// cannot distinguish "never written" from "deleted" — that distinction
// must be layered on top of Engine.
func (e *Engine) Get(key []byte) []byte {
	e.metrics.ReadsTotal.Inc()

	if v, ok := e.mt.get(key); ok {
		v = valueOrMiss(v)
		e.metrics.BytesRead.Add(float64(len(v)))
		return v
	}

	for _, tier := range e.tiers {
		for i := len(tier) - 1; i >= 0; i-- {
			if v, ok := tier[i].Get(key); ok {
				v = valueOrMiss(v)
				e.metrics.BytesRead.Add(float64(len(v)))
				return v
			}
		}
	}
	return nil
}

func valueOrMiss(v []byte) []byte {
	if string(v) == Tombstone {
		return nil
	}
	return v
}

// Scan returns a key-ascending sequence of (key, value) pairs for keys in
// [start, end] whose newest record across memtable and all tiers is not a
// tombstone, capped at limit results (or opts.ScanDefaultLimit if limit <=
// 0). It materializes each source's matching entries into a map keyed by
// key, visiting sources newest first — memtable, then tier 0, then tier 1,
// and so on, with later list positions newer within a tier — and keeping
// only the first (newest) value seen per key, then drops tombstones and
// returns the remainder sorted and capped.
func (e *Engine) Scan(start, end []byte, limit int) []Entry {
	if limit <= 0 {
		limit = e.opts.ScanDefaultLimit
	}

	// unlimited per-source collection: a key hidden by a newer tombstone
	// must not be starved out of the merge by an early per-source cap.
	latest := make(map[string][]byte)
	order := make([]string, 0)

	record := func(entries []Entry) {
		for _, en := range entries {
			k := string(en.Key)
			if _, seen := latest[k]; seen {
				continue
			}
			latest[k] = en.Value
			order = append(order, k)
		}
	}

	record(e.mt.scan(start, end, 0))
	for _, tier := range e.tiers {
		for i := len(tier) - 1; i >= 0; i-- {
			record(tier[i].Scan(start, end, 0))
		}
	}

	sortedKeys := append([]string(nil), order...)
	sort.Strings(sortedKeys)

	out := make([]Entry, 0, limit)
	for _, k := range sortedKeys {
		v := latest[k]
		if string(v) == Tombstone {
			continue
		}
		out = append(out, Entry{Key: []byte(k), Value: v})
		if len(out) >= limit {
			break
		}
	}
	return out
}

// ManualFlush flushes the memtable if non-empty; Close does not do this
// implicitly.
func (e *Engine) ManualFlush() error {
	if e.mt.count() == 0 {
		return nil
	}
	return e.flush()
}

// GetTierCount returns the number of tiers currently allocated.
func (e *Engine) GetTierCount() int {
	return len(e.tiers)
}

// PrintStats writes a human-readable statistics summary to stdout, mainly
// for interactive/CLI diagnostics; the textual format itself is not part
// of this engine's contract.
func (e *Engine) PrintStats() {
	snap := e.metrics.TakeSnapshot()
	fmt.Printf("LSM Engine Statistics:\n")
	fmt.Printf("  Writes: %d (%.2f MB)\n", snap.WritesTotal, float64(snap.BytesWritten)/(1024*1024))
	fmt.Printf("  Reads: %d (%.2f MB)\n", snap.ReadsTotal, float64(snap.BytesRead)/(1024*1024))
	fmt.Printf("  Flushes: %d\n", snap.FlushesTotal)
	fmt.Printf("  Compactions: %d\n", snap.CompactionsTotal)
	fmt.Printf("  Memtable size: %.2f KB\n", float64(e.mt.size())/1024)
	fmt.Printf("  Tiers: %d\n", len(e.tiers))
	for i, tier := range e.tiers {
		fmt.Printf("    tier %d: %d file(s)\n", i, len(tier))
	}
}

// flush snapshots the memtable, writes it as a new tier-0 SSTable, clears
// the memtable, and cascades compaction from tier 0. If a partial write
// fails, the memtable is left untouched so a retry is possible.
func (e *Engine) flush() error {
	if e.mt.count() == 0 {
		return nil
	}

	data := e.mt.sortedData()
	path := e.nextTablePath()

	tbl, err := createSSTableFromSortedData(path, data, e.opts.FilterWidth, e.opts.FilterHashCount)
	if err != nil {
		e.log.Error("flush failed", logging.String("path", path), logging.Err(err))
		return fmt.Errorf("lsm: flush: %w", err)
	}

	e.tiers[0] = append(e.tiers[0], tbl)
	e.mt.clear()
	e.metrics.FlushesTotal.Inc()
	e.metrics.MemtableSizeBytes.Set(0)
	e.updateTierMetrics()
	e.log.Info("flushed memtable", logging.String("path", path), logging.Int("entries", tbl.entryCount))

	return e.compact(0)
}

// compact checks tier t's precondition (fewer than TierCompactionSize
// files means nothing to do), then merges every file in the tier into one
// new file promoted to tier t+1, deletes the inputs, and recurses into
// t+1. Compacting an index outside [0, len(e.tiers)) is a
// programming-contract violation.
func (e *Engine) compact(t int) error {
	if t < 0 || t >= len(e.tiers) {
		tierOutOfRange(t, len(e.tiers))
	}

	tier := e.tiers[t]
	if len(tier) < e.opts.TierCompactionSize {
		return nil
	}

	if t+1 >= len(e.tiers) {
		e.tiers = append(e.tiers, []*sstable{})
	}

	path := e.nextTablePath()
	merged, err := compactTier(tier, path, e.opts.FilterWidth, e.opts.FilterHashCount)
	if err != nil {
		e.log.Error("compaction failed", logging.Int("tier", t), logging.Err(err))
		return fmt.Errorf("lsm: compact tier %d: %w", t, err)
	}

	for _, old := range tier {
		if err := os.Remove(old.path); err != nil {
			e.log.Warn("failed to remove compacted input", logging.String("path", old.path), logging.Err(err))
		}
	}

	e.tiers[t] = []*sstable{}
	e.tiers[t+1] = append(e.tiers[t+1], merged)
	e.metrics.CompactionsTotal.Inc()
	e.updateTierMetrics()
	e.log.Info("compacted tier", logging.Int("tier", t), logging.String("path", path), logging.Int("entries", merged.entryCount))

	return e.compact(t + 1)
}

// updateTierMetrics refreshes the per-tier and total SSTable gauges after
// a flush or compaction changes tier membership.
func (e *Engine) updateTierMetrics() {
	total := 0
	for i, tier := range e.tiers {
		total += len(tier)
		e.metrics.TierFileCount.WithLabelValues(fmt.Sprintf("%d", i)).Set(float64(len(tier)))
	}
	e.metrics.SSTableCount.Set(float64(total))
}

// nextTablePath generates <dir>/sst_<digits>.sst using a millisecond
// wall-clock timestamp with a per-engine sequence suffix, so a burst of
// flushes/compactions inside one millisecond never collides on filename.
func (e *Engine) nextTablePath() string {
	ms := time.Now().UnixMilli()
	e.seq = (e.seq + 1) % 1000
	name := fmt.Sprintf("sst_%d%03d.sst", ms, e.seq)
	return filepath.Join(e.dir, name)
}
