package party

import (
	"encoding/binary"
	"io"
	"sort"
)

type IndexSlice []Index

// NewIndexSlice returns a sorted copy of indices.
func NewIndexSlice(indices []Index) IndexSlice {
	s := make(IndexSlice, len(indices))
	copy(s, indices)
	s.Sort()
	return s
}

// Sequence returns the sorted slice 1, …, n.
func Sequence(n int) IndexSlice {
	s := make(IndexSlice, n)
	for i := range s {
		s[i] = Index(i + 1)
	}
	return s
}

func (indices IndexSlice) Len() int           { return len(indices) }
func (indices IndexSlice) Less(i, j int) bool { return indices[i] < indices[j] }
func (indices IndexSlice) Swap(i, j int)      { indices[i], indices[j] = indices[j], indices[i] }

// Sort is a convenience method: x.Sort() calls Sort(x).
func (indices IndexSlice) Sort() { sort.Sort(indices) }

// Valid returns true if the slice is sorted, has no duplicates, and every element lies in 1, …, n.
func (indices IndexSlice) Valid(n int) bool {
	for i, idx := range indices {
		if idx == 0 || int(idx) > n {
			return false
		}
		if i > 0 && indices[i-1] >= idx {
			return false
		}
	}
	return true
}

// Contains returns true if indices contains idx.
// Assumes that indices is sorted.
func (indices IndexSlice) Contains(idx Index) bool {
	_, ok := indices.Search(idx)
	return ok
}

// Search returns the position of x in indices, and whether it was found.
// Assumes that indices is sorted.
func (indices IndexSlice) Search(x Index) (int, bool) {
	pos := sort.Search(len(indices), func(i int) bool { return indices[i] >= x })
	if pos < len(indices) && indices[pos] == x {
		return pos, true
	}
	return 0, false
}

// Copy returns a sorted copy of indices.
func (indices IndexSlice) Copy() IndexSlice {
	return NewIndexSlice(indices)
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (indices IndexSlice) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, uint32(len(indices))); err != nil {
		return 0, err
	}
	nAll := int64(4)
	for _, idx := range indices {
		n, err := idx.WriteTo(w)
		nAll += n
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (IndexSlice) Domain() string {
	return "IndexSlice"
}
