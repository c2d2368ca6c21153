package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatmapLevelNeverExceedsMax(t *testing.T) {
	h := NewHeatmap()
	now := time.Now()

	for i := 0; i < 10; i++ {
		h.Record(now)
	}

	assert.Equal(t, 10, h.Count(now))
	assert.Equal(t, HeatmapMaxLevel, h.Level(now))

	for _, row := range h.Cells(now) {
		for _, level := range row {
			assert.LessOrEqual(t, level, HeatmapMaxLevel)
			assert.GreaterOrEqual(t, level, 0)
		}
	}
}

func TestHeatmapLevels(t *testing.T) {
	tests := []struct {
		count int
		level int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 4},
		{99, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, levelFor(tt.count), "count=%d", tt.count)
	}
}

func TestHeatmapCellsShape(t *testing.T) {
	h := NewHeatmap()
	now := time.Now()
	h.Record(now)
	h.Record(now.AddDate(0, 0, -30))

	grid := h.Cells(now)
	require.Len(t, grid, HeatmapWeeks)
	for _, row := range grid {
		require.Len(t, row, HeatmapDays)
	}

	// today's cell carries the recorded activity
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	assert.Equal(t, 1, grid[HeatmapWeeks-1][weekday-1])
}

func TestHeatmapSetCountAndReset(t *testing.T) {
	h := NewHeatmap()
	day := time.Date(2026, 8, 10, 12, 0, 0, 0, time.Local)

	h.SetCount("2026-08-10", 3)
	assert.Equal(t, 3, h.Level(day))

	h.SetCount("2026-08-10", 0)
	assert.Equal(t, 0, h.Level(day))

	h.Record(day)
	h.Reset()
	assert.Equal(t, 0, h.Count(day))
}
