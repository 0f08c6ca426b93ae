// Package config loads engine tunables from a YAML file, the same
// serialization format used for configuration elsewhere in this codebase.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-lsmkv/pkg/lsm"
)

// File mirrors lsm.Options field-for-field with YAML tags, plus DataDir,
// which Options does not carry and File.Options() does not copy. A config
// file only needs to set the tunables it wants to override.
type File struct {
	DataDir            string `yaml:"data_dir"`
	MemtableFlushBytes int    `yaml:"memtable_flush_bytes"`
	TierCompactionSize int    `yaml:"tier_compaction_size"`
	FilterWidth        uint64 `yaml:"filter_width"`
	FilterHashCount    int    `yaml:"filter_hash_count"`
	ScanDefaultLimit   int    `yaml:"scan_default_limit"`
}

// Load reads and parses a YAML config file. Zero-valued fields fall back
// to lsm.DefaultOptions when the returned File.Options() is applied.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Options converts a parsed File into lsm.Options, letting the engine's
// own default-filling logic handle any fields left at zero.
func (f File) Options() lsm.Options {
	return lsm.Options{
		MemtableFlushBytes: f.MemtableFlushBytes,
		TierCompactionSize: f.TierCompactionSize,
		FilterWidth:        f.FilterWidth,
		FilterHashCount:    f.FilterHashCount,
		ScanDefaultLimit:   f.ScanDefaultLimit,
	}
}
