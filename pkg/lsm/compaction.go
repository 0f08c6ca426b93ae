package lsm

// compactTier merges every table in a tier into one new file at outPath.
// Recency follows the data model: the last table in the tier's list is
// newest and gets order 0, the next-to-last gets order 1, and so on, so
// that on a duplicate key the smallest order — the newest write — wins.
// Tombstones are retained in the output; they may still need to shadow
// older tiers that have not yet been compacted.
func compactTier(tables []*sstable, outPath string, width uint64, hashCount int) (*sstable, error) {
	iters := make([]*tableIterator, 0, len(tables))
	for i, t := range tables {
		order := len(tables) - 1 - i
		it, err := newTableIterator(t, order)
		if err != nil {
			for _, opened := range iters {
				opened.close()
			}
			return nil, err
		}
		iters = append(iters, it)
	}

	merged := mergeSources(iters)
	return createSSTableFromSortedData(outPath, merged, width, hashCount)
}
