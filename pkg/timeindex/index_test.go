package timeindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ssargent/actfast/pkg/timeindex"
)

func TestIndex_RowsHalfOpen(t *testing.T) {
	ix := timeindex.Build([]int64{0, 10, 20, 30, 40})

	assert.Equal(t, []int{1, 2}, ix.Rows(10, 30))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ix.Rows(-100, 100))
	assert.Empty(t, ix.Rows(41, 100))
	assert.Empty(t, ix.Rows(20, 20))
}

func TestIndex_DuplicateTimestamps(t *testing.T) {
	// second record restarts at an earlier second
	ix := timeindex.Build([]int64{100, 200, 100, 300})

	assert.Equal(t, 4, ix.Len())
	assert.Equal(t, []int{0, 2, 1}, ix.Rows(100, 300))
}

func TestIndex_Bounds(t *testing.T) {
	_, _, ok := timeindex.Build(nil).Bounds()
	assert.False(t, ok)

	ts := make([]int64, 0, 200)
	for i := 199; i >= 0; i-- {
		ts = append(ts, int64(i)*1_000)
	}
	first, last, ok := timeindex.Build(ts).Bounds()
	assert.True(t, ok)
	assert.Equal(t, int64(0), first)
	assert.Equal(t, int64(199_000), last)
}
