package lsm

import (
	"path/filepath"
	"testing"
)

func iteratorFor(t *testing.T, entries []Entry, order int) *tableIterator {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.sst")
	tbl, err := createSSTableFromSortedData(path, entries, DefaultFilterWidth, DefaultFilterHashCount)
	if err != nil {
		t.Fatalf("createSSTableFromSortedData: %v", err)
	}
	it, err := newTableIterator(tbl, order)
	if err != nil {
		t.Fatalf("newTableIterator: %v", err)
	}
	return it
}

func TestMergeSources_UnionsDisjointKeys(t *testing.T) {
	it0 := iteratorFor(t, []Entry{{Key: []byte("a"), Value: []byte("A")}}, 0)
	it1 := iteratorFor(t, []Entry{{Key: []byte("b"), Value: []byte("B")}}, 1)

	got := mergeSources([]*tableIterator{it0, it1})
	if len(got) != 2 || string(got[0].Key) != "a" || string(got[1].Key) != "b" {
		t.Fatalf("merge = %+v, want [a b]", got)
	}
}

func TestMergeSources_SmallestOrderWinsOnDuplicate(t *testing.T) {
	older := iteratorFor(t, []Entry{{Key: []byte("k"), Value: []byte("old")}}, 5)
	newer := iteratorFor(t, []Entry{{Key: []byte("k"), Value: []byte("new")}}, 0)

	got := mergeSources([]*tableIterator{older, newer})
	if len(got) != 1 || string(got[0].Value) != "new" {
		t.Fatalf("merge = %+v, want single entry with value 'new'", got)
	}
}

func TestMergeSources_ThreeWayTieBreaksOnOrder(t *testing.T) {
	a := iteratorFor(t, []Entry{{Key: []byte("k"), Value: []byte("a")}}, 2)
	b := iteratorFor(t, []Entry{{Key: []byte("k"), Value: []byte("b")}}, 1)
	c := iteratorFor(t, []Entry{{Key: []byte("k"), Value: []byte("c")}}, 0)

	got := mergeSources([]*tableIterator{a, b, c})
	if len(got) != 1 || string(got[0].Value) != "c" {
		t.Fatalf("merge = %+v, want single entry with value 'c' (order 0)", got)
	}
}

func TestMergeSources_OutputIsKeyAscending(t *testing.T) {
	it0 := iteratorFor(t, []Entry{
		{Key: []byte("m"), Value: []byte("1")},
		{Key: []byte("z"), Value: []byte("2")},
	}, 0)
	it1 := iteratorFor(t, []Entry{
		{Key: []byte("a"), Value: []byte("3")},
		{Key: []byte("n"), Value: []byte("4")},
	}, 1)

	got := mergeSources([]*tableIterator{it0, it1})
	want := []string{"a", "m", "n", "z"}
	if len(got) != len(want) {
		t.Fatalf("merge length = %d, want %d", len(got), len(want))
	}
	for i, e := range got {
		if string(e.Key) != want[i] {
			t.Fatalf("merge[%d] = %q, want %q", i, e.Key, want[i])
		}
	}
}
