package webServer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampWeeks(t *testing.T) {
	// gorm reads a negative limit as "no limit", so anything below 1 falls
	// back to the default window
	assert.Equal(t, defaultWeeksNum, clampWeeks(-5))
	assert.Equal(t, defaultWeeksNum, clampWeeks(0))

	assert.Equal(t, 1, clampWeeks(1))
	assert.Equal(t, 10, clampWeeks(10))
	assert.Equal(t, maxWeeksNum, clampWeeks(maxWeeksNum))
	assert.Equal(t, maxWeeksNum, clampWeeks(100000))
}
