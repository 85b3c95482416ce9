package timeindex

// Index maps nanosecond timestamps to the table rows that carry them.
// Timestamps may repeat, for example when a device clock steps back.
type Index struct {
	tree *BPlusTree[int64, []int]
	rows int
}

// Build indexes a datetime column
func Build(datetime []int64) *Index {
	ix := &Index{tree: NewBPlusTree[int64, []int](DefaultOrder)}
	for row, ts := range datetime {
		ix.Add(ts, row)
	}
	return ix
}

// Add records that row carries timestamp ts
func (ix *Index) Add(ts int64, row int) {
	ix.tree.Upsert(ts, func(rows []int, _ bool) []int {
		return append(rows, row)
	})
	ix.rows++
}

// Len returns the number of indexed rows
func (ix *Index) Len() int { return ix.rows }

// Rows returns the rows whose timestamp lies in [from, to), ordered by
// timestamp and then by row.
func (ix *Index) Rows(from, to int64) []int {
	var out []int
	ix.tree.Range(from, to, func(_ int64, rows []int) bool {
		out = append(out, rows...)
		return true
	})
	return out
}

// Bounds returns the smallest and largest indexed timestamps
func (ix *Index) Bounds() (first, last int64, ok bool) {
	if ix.rows == 0 {
		return 0, 0, false
	}
	ix.tree.m.RLock()
	defer ix.tree.m.RUnlock()

	n := ix.tree.root
	for !n.isLeaf {
		n = n.children[0]
	}
	first = n.keys[0]

	n = ix.tree.root
	for !n.isLeaf {
		n = n.children[len(n.children)-1]
	}
	last = n.keys[len(n.keys)-1]
	return first, last, true
}
