package lsm

import (
	"os"
	"path/filepath"
	"testing"
)

func mustCreate(t *testing.T, entries []Entry) *sstable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sst_000.sst")
	tbl, err := createSSTableFromSortedData(path, entries, DefaultFilterWidth, DefaultFilterHashCount)
	if err != nil {
		t.Fatalf("createSSTableFromSortedData: %v", err)
	}
	return tbl
}

func TestSSTable_GetHitAndMiss(t *testing.T) {
	tbl := mustCreate(t, []Entry{
		{Key: []byte("a"), Value: []byte("A")},
		{Key: []byte("b"), Value: []byte("B")},
		{Key: []byte("c"), Value: []byte("C")},
	})

	for _, want := range []struct{ k, v string }{{"a", "A"}, {"b", "B"}, {"c", "C"}} {
		got, ok := tbl.Get([]byte(want.k))
		if !ok || string(got) != want.v {
			t.Fatalf("Get(%s) = (%q, %v), want (%s, true)", want.k, got, ok, want.v)
		}
	}

	if _, ok := tbl.Get([]byte("z")); ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestSSTable_ScanRangeAndLimit(t *testing.T) {
	entries := make([]Entry, 10)
	for i := 0; i < 10; i++ {
		k := []byte{byte('a' + i)}
		entries[i] = Entry{Key: k, Value: k}
	}
	tbl := mustCreate(t, entries)

	got := tbl.Scan([]byte("c"), []byte("f"), 0)
	if len(got) != 4 {
		t.Fatalf("scan length = %d, want 4", len(got))
	}

	limited := tbl.Scan([]byte("a"), []byte("j"), 2)
	if len(limited) != 2 {
		t.Fatalf("scan with limit=2 returned %d entries", len(limited))
	}
}

func TestSSTable_FilterHasNoFalseNegatives(t *testing.T) {
	entries := []Entry{
		{Key: []byte("apple"), Value: []byte("1")},
		{Key: []byte("banana"), Value: []byte("2")},
	}
	tbl := mustCreate(t, entries)

	for _, e := range entries {
		if !tbl.filter.MightContain(e.Key) {
			t.Fatalf("filter false negative for %s", e.Key)
		}
	}
}

func TestSSTable_OpenRoundTrip(t *testing.T) {
	entries := []Entry{
		{Key: []byte("k1"), Value: []byte("v1")},
		{Key: []byte("k2"), Value: []byte("v2")},
	}
	original := mustCreate(t, entries)

	reopened, err := openSSTable(original.path, DefaultFilterWidth, DefaultFilterHashCount)
	if err != nil {
		t.Fatalf("openSSTable: %v", err)
	}
	if reopened.entryCount != 2 {
		t.Fatalf("entryCount = %d, want 2", reopened.entryCount)
	}
	if got, ok := reopened.Get([]byte("k1")); !ok || string(got) != "v1" {
		t.Fatalf("Get(k1) after reopen = (%q, %v)", got, ok)
	}
}

func TestSSTable_TombstoneStoredAsOrdinaryValue(t *testing.T) {
	tbl := mustCreate(t, []Entry{{Key: []byte("k"), Value: []byte(Tombstone)}})

	got, ok := tbl.Get([]byte("k"))
	if !ok || string(got) != Tombstone {
		t.Fatalf("Get(k) = (%q, %v), want (%s, true) — the table layer never interprets tombstones", got, ok, Tombstone)
	}
}

func TestOpenSSTable_RejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.sst")
	if err := os.WriteFile(path, []byte("not an sstable, way too short"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := openSSTable(path, DefaultFilterWidth, DefaultFilterHashCount); err == nil {
		t.Fatalf("expected error opening malformed sstable")
	}
}

func TestCreateSSTable_RemovesPartialFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "sst_000.sst") // parent dir doesn't exist

	_, err := createSSTableFromSortedData(path, []Entry{{Key: []byte("a"), Value: []byte("b")}}, DefaultFilterWidth, DefaultFilterHashCount)
	if err == nil {
		t.Fatalf("expected error creating sstable under nonexistent directory")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected no partial file left behind, stat error = %v", statErr)
	}
}

func TestCompactTier_NewestOrderWinsOnDuplicateKey(t *testing.T) {
	dir := t.TempDir()

	older, err := createSSTableFromSortedData(filepath.Join(dir, "older.sst"),
		[]Entry{{Key: []byte("dup"), Value: []byte("old")}}, DefaultFilterWidth, DefaultFilterHashCount)
	if err != nil {
		t.Fatalf("create older: %v", err)
	}
	newer, err := createSSTableFromSortedData(filepath.Join(dir, "newer.sst"),
		[]Entry{{Key: []byte("dup"), Value: []byte("new")}}, DefaultFilterWidth, DefaultFilterHashCount)
	if err != nil {
		t.Fatalf("create newer: %v", err)
	}

	// Tier list order: older appended first, newer last — matching the
	// data model's "later list position is newer" rule.
	merged, err := compactTier([]*sstable{older, newer}, filepath.Join(dir, "merged.sst"), DefaultFilterWidth, DefaultFilterHashCount)
	if err != nil {
		t.Fatalf("compactTier: %v", err)
	}

	got, ok := merged.Get([]byte("dup"))
	if !ok || string(got) != "new" {
		t.Fatalf("Get(dup) after compaction = (%q, %v), want (new, true)", got, ok)
	}
}

func TestCompactTier_RetainsTombstones(t *testing.T) {
	dir := t.TempDir()
	tbl, err := createSSTableFromSortedData(filepath.Join(dir, "a.sst"),
		[]Entry{{Key: []byte("x"), Value: []byte(Tombstone)}}, DefaultFilterWidth, DefaultFilterHashCount)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	merged, err := compactTier([]*sstable{tbl}, filepath.Join(dir, "merged.sst"), DefaultFilterWidth, DefaultFilterHashCount)
	if err != nil {
		t.Fatalf("compactTier: %v", err)
	}

	got, ok := merged.Get([]byte("x"))
	if !ok || string(got) != Tombstone {
		t.Fatalf("expected tombstone to survive compaction, got (%q, %v)", got, ok)
	}
}
