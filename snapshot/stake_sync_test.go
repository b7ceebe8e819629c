package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStopSyncServiceWithoutStart(t *testing.T) {
	service, err := NewStakeSyncService()
	require.NoError(t, err)
	// must return immediately when the service never started
	service.StopSyncService()
}
