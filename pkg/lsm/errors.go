package lsm

import (
	"errors"
	"fmt"
)

// ErrDataDirRequired is returned by Open when no directory is given.
var ErrDataDirRequired = errors.New("lsm: data directory is required")

// tierOutOfRange is a programming-contract violation — compacting a tier
// index that doesn't exist — and is therefore fatal rather than a
// recoverable error value, matching the design's error taxonomy.
func tierOutOfRange(t, count int) {
	panic(fmt.Errorf("lsm: compact requested for out-of-range tier %d (have %d)", t, count))
}
