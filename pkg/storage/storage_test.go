package storage

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/actfast/pkg/sensors"
)

func newStore(t *testing.T) *ResultStore {
	t.Helper()
	s, err := NewResultStoreWithOptions("results", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(t *testing.T) *sensors.Result {
	t.Helper()
	c := sensors.NewCollector("Actigraph GT3X")
	require.NoError(t, c.Metadata(sensors.MetadataEntry{Category: "info", Key: "Serial Number", Value: "MOS1"}))

	table := sensors.NewTable(sensors.TableActivity)
	table.AppendTime(0, 10, 20)
	sensors.MustColumn[float32](table, sensors.KindAcceleration).Append(0, 0, 1, 0, 0, 1, 0, 0, 1)
	require.NoError(t, c.Table(table))
	return c.Result()
}

func TestResultStore_SaveGet(t *testing.T) {
	s := newStore(t)

	info, err := s.Save("subject-1.gt3x", sampleResult(t))
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, 3, info.Rows[sensors.TableActivity])
	assert.Equal(t, "Actigraph GT3X", info.Format)

	got, err := s.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, "MOS1", got.Metadata["info"]["Serial Number"])
	assert.Equal(t, []int64{0, 10, 20}, got.Tables[sensors.TableActivity].Datetime)

	gotInfo, err := s.Info(info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.Name, gotInfo.Name)
}

func TestResultStore_ListInCreationOrder(t *testing.T) {
	s := newStore(t)

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		info, err := s.Save(name, sampleResult(t))
		require.NoError(t, err)
		ids = append(ids, info.ID)
	}

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, info := range list {
		assert.Contains(t, ids, info.ID)
	}
}

func TestResultStore_Delete(t *testing.T) {
	s := newStore(t)
	info, err := s.Save("x", sampleResult(t))
	require.NoError(t, err)

	require.NoError(t, s.Delete(info.ID))
	_, err = s.Get(info.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(info.ID), ErrNotFound)

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResultStore_InvalidID(t *testing.T) {
	s := newStore(t)
	_, err := s.Get("not-a-ksuid")
	assert.ErrorIs(t, err, ErrNotFound)
}
