package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateId(t *testing.T) {
	now := time.Now()
	id := GenerateId(now, "alice", "2024-W07", "staking")
	assert.Len(t, id, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", id)
}

func TestConvertTimeToStamp(t *testing.T) {
	ts := time.Date(2024, 2, 14, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-14 11:00:00", ConvertTimeToStamp(ts))
}
