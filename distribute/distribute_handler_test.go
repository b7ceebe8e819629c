package distribute

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medals_reward/types"
)

func TestRetryableDistributionStatus(t *testing.T) {
	// a rolled-back save and an insufficient-funds week enqueued nothing, so
	// both can be reclaimed and redone
	assert.True(t, retryableDistributionStatus(types.DistributionStatusFailed))
	assert.True(t, retryableDistributionStatus(types.DistributionStatusInsufficientFunds))

	// anything that reached the ledger stays claimed
	assert.False(t, retryableDistributionStatus(types.DistributionStatusProcessing))
	assert.False(t, retryableDistributionStatus(types.DistributionStatusDistributed))
	assert.False(t, retryableDistributionStatus(types.DistributionStatusAudited))
	assert.False(t, retryableDistributionStatus(types.DistributionStatusAuditFailed))
}
