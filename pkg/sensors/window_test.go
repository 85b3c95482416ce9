package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	table := activityTable(5) // rows at 0, 10ms, 20ms, 30ms, 40ms

	w, err := Window(table, 10_000_000, 30_000_000)
	require.NoError(t, err)

	assert.Equal(t, []int64{10_000_000, 20_000_000}, w.Datetime)
	acc, ok := w.Column(KindAcceleration)
	require.True(t, ok)
	assert.Equal(t, []float32{1, -1, 1, 2, -2, 1}, acc.(*Series[float32]).Values())
	assert.NoError(t, w.Validate())
}

func TestWindow_KeepsRowOrderWithClockSteps(t *testing.T) {
	table := NewTable(TableLux)
	table.AppendTime(50, 10, 50, 20)
	MustColumn[uint16](table, KindLux).Append(1, 2, 3, 4)

	w, err := Window(table, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, []int64{50, 10, 50, 20}, w.Datetime)

	lux, _ := w.Column(KindLux)
	assert.Equal(t, []uint16{1, 2, 3, 4}, lux.(*Series[uint16]).Values())
}

func TestWindow_Empty(t *testing.T) {
	w, err := Window(activityTable(3), 1_000_000_000, 2_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Len())
	assert.NoError(t, w.Validate())
}

func TestWindowResult(t *testing.T) {
	c := NewCollector("Actigraph GT3X")
	require.NoError(t, c.Table(activityTable(4)))

	r, err := WindowResult(c.Result(), 0, 20_000_000)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Tables[TableActivity].Len())
	assert.Equal(t, 4, c.Result().Tables[TableActivity].Len(), "source untouched")
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(activityTable(3))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, int64(0), s.FirstTime)
	assert.Equal(t, int64(20_000_000), s.LastTime)
	require.Len(t, s.Columns, 3)

	x := s.Columns[0]
	assert.Equal(t, KindAcceleration, x.Kind)
	assert.Equal(t, 0, x.Component)
	assert.Equal(t, 3, x.Count)
	assert.InDelta(t, 0.0, x.Min, 1e-9)
	assert.InDelta(t, 2.0, x.Max, 1e-9)
	assert.InDelta(t, 1.0, x.Mean, 1e-9)

	z := s.Columns[2]
	assert.InDelta(t, 1.0, z.Mean, 1e-9)
	assert.InDelta(t, 0.0, z.StdDev, 1e-9)
}

func TestSummarize_EmptyTable(t *testing.T) {
	s, err := Summarize(NewTable(TableLux))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Rows)
	assert.Empty(t, s.Columns)
}
