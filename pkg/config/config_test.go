package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-lsmkv/pkg/lsm"
)

func TestLoad_AppliesOverridesOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	contents := "tier_compaction_size: 4\nfilter_hash_count: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, f.TierCompactionSize)
	require.Equal(t, 5, f.FilterHashCount)
	require.Zero(t, f.MemtableFlushBytes)
}

func TestFile_OptionsLeavesZeroFieldsForEngineDefaults(t *testing.T) {
	f := File{TierCompactionSize: 4}
	opts := f.Options()

	require.Equal(t, 4, opts.TierCompactionSize)
	require.Zero(t, opts.MemtableFlushBytes) // left for lsm.Options.withDefaults to fill in

	full := lsm.DefaultOptions()
	require.Equal(t, lsm.DefaultMemtableFlushBytes, full.MemtableFlushBytes)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
