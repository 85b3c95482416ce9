package timeindex_test

import (
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/actfast/pkg/timeindex"
)

func TestBPlusTree_InsertAndSearch(t *testing.T) {
	tests := map[string]struct {
		inserts  []int64
		searches map[int64]bool
	}{
		"ascending": {
			inserts:  []int64{1, 2, 3, 4, 5},
			searches: map[int64]bool{1: true, 5: true, 6: false},
		},
		"descending with negatives": {
			inserts:  []int64{3, 2, 1, 0, -1, -2},
			searches: map[int64]bool{-2: true, 0: true, 4: false},
		},
		"empty tree": {
			searches: map[int64]bool{1: false},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			tree := timeindex.NewBPlusTree[int64, int64](3)
			for _, k := range tc.inserts {
				tree.Insert(k, k*10)
			}
			for key, found := range tc.searches {
				v, ok := tree.Search(key)
				assert.Equal(t, found, ok, "key %d", key)
				if found {
					assert.Equal(t, key*10, v)
				}
			}
		})
	}
}

func TestBPlusTree_InsertReplaces(t *testing.T) {
	tree := timeindex.NewBPlusTree[int64, string](4)
	tree.Insert(1, "one")
	tree.Insert(1, "uno")

	v, ok := tree.Search(1)
	require.True(t, ok)
	assert.Equal(t, "uno", v)
	assert.Equal(t, 1, tree.Len())
}

func TestBPlusTree_RangeAcrossSplits(t *testing.T) {
	tree := timeindex.NewBPlusTree[int64, int](3)
	keys := rand.New(rand.NewSource(7)).Perm(500)
	for _, k := range keys {
		tree.Insert(int64(k), k)
	}
	assert.Equal(t, 500, tree.Len())
	assert.Greater(t, tree.Height(), 2)

	var got []int64
	tree.Range(100, 200, func(k int64, v int) bool {
		assert.Equal(t, int(k), v)
		got = append(got, k)
		return true
	})

	require.Len(t, got, 100)
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i] < got[j] }))
	assert.Equal(t, int64(100), got[0])
	assert.Equal(t, int64(199), got[99])
}

func TestBPlusTree_RangeStopsEarly(t *testing.T) {
	tree := timeindex.NewBPlusTree[int64, int](4)
	for i := 0; i < 50; i++ {
		tree.Insert(int64(i), i)
	}

	count := 0
	tree.Range(0, 50, func(int64, int) bool {
		count++
		return count < 5
	})
	assert.Equal(t, 5, count)
}

func TestBPlusTree_ConcurrentReaders(t *testing.T) {
	tree := timeindex.NewBPlusTree[int64, int](8)
	for i := 0; i < 1000; i++ {
		tree.Insert(int64(i), i)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				v, ok := tree.Search(int64(i))
				assert.True(t, ok)
				assert.Equal(t, i, v)
			}
		}()
	}
	wg.Wait()
}
