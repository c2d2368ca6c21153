package session

import "time"

const (
	// HeatmapWeeks is the trailing window width in weeks.
	HeatmapWeeks = 17
	// HeatmapDays is the number of rows, one per weekday.
	HeatmapDays = 7
	// HeatmapMaxLevel caps the intensity of a single cell.
	HeatmapMaxLevel = 4
)

const dateLayout = "2006-01-02"

// Heatmap tracks per-day submission counts for the activity grid. It is not
// safe for concurrent use on its own; the Store serializes access.
type Heatmap struct {
	counts map[string]int
}

// NewHeatmap creates an empty heatmap.
func NewHeatmap() *Heatmap {
	return &Heatmap{counts: map[string]int{}}
}

// Record adds one activity on the given day.
func (h *Heatmap) Record(t time.Time) {
	h.counts[t.Format(dateLayout)]++
}

// SetCount overwrites a day's count, used when rebuilding from server stats.
func (h *Heatmap) SetCount(date string, count int) {
	if count <= 0 {
		delete(h.counts, date)
		return
	}
	h.counts[date] = count
}

// Count returns the raw activity count for a day.
func (h *Heatmap) Count(t time.Time) int {
	return h.counts[t.Format(dateLayout)]
}

// Level maps a day's count to a display level, capped at HeatmapMaxLevel.
func (h *Heatmap) Level(t time.Time) int {
	return levelFor(h.Count(t))
}

func levelFor(count int) int {
	if count <= 0 {
		return 0
	}
	if count >= HeatmapMaxLevel {
		return HeatmapMaxLevel
	}
	return count
}

// Reset drops all recorded activity.
func (h *Heatmap) Reset() {
	h.counts = map[string]int{}
}

// Cells renders the trailing grid as [week][weekday] levels ending today.
// Week columns start on Monday; future cells of the current week stay zero.
func (h *Heatmap) Cells(now time.Time) [][]int {
	grid := make([][]int, HeatmapWeeks)
	for i := range grid {
		grid[i] = make([]int, HeatmapDays)
	}

	// Monday of the current week
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(weekday - 1))
	firstWeek := weekStart.AddDate(0, 0, -7*(HeatmapWeeks-1))

	for w := 0; w < HeatmapWeeks; w++ {
		for d := 0; d < HeatmapDays; d++ {
			day := firstWeek.AddDate(0, 0, w*7+d)
			if day.After(now) {
				continue
			}
			grid[w][d] = h.Level(day)
		}
	}
	return grid
}
