package reward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekIdStableWithinWeek(t *testing.T) {
	// 2024-02-12 is a Monday, 2024-02-18 the following Sunday
	monday := time.Date(2024, 2, 12, 0, 0, 1, 0, time.UTC)
	thursday := time.Date(2024, 2, 15, 12, 30, 0, 0, time.UTC)
	sunday := time.Date(2024, 2, 18, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, "2024-W07", WeekId(monday))
	assert.Equal(t, WeekId(monday), WeekId(thursday))
	assert.Equal(t, WeekId(monday), WeekId(sunday))
}

func TestWeekIdCrossesBoundary(t *testing.T) {
	sundayNight := time.Date(2024, 2, 18, 23, 59, 0, 0, time.UTC)
	mondayMorning := time.Date(2024, 2, 19, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, "2024-W07", WeekId(sundayNight))
	assert.Equal(t, "2024-W08", WeekId(mondayMorning))
}

func TestWeekIdYearBoundary(t *testing.T) {
	// ISO weeks are Thursday-anchored: the week containing 2024-12-30 (a
	// Monday) belongs to 2025, and 2021-01-01 (a Friday) still sits in 2020's
	// final week.
	assert.Equal(t, "2024-W52", WeekId(time.Date(2024, 12, 29, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2025-W01", WeekId(time.Date(2024, 12, 30, 0, 1, 0, 0, time.UTC)))
	assert.Equal(t, "2020-W53", WeekId(time.Date(2021, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestWeekIdZeroPadsWeekNumber(t *testing.T) {
	assert.Equal(t, "2024-W01", WeekId(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
}
