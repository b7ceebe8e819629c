package distribute

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medals_reward/logs"
	"medals_reward/reward"
	"medals_reward/types"
)

func testVoteService() *CuratorVoteService {
	return &CuratorVoteService{
		logger: logs.GetLogger(),
		processor: reward.NewCuratorProcessor(reward.CuratorConfig{
			Curators:       []string{"curator.one"},
			MaxVotesPerDay: 5,
			LaunchDate:     time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
			BaseReward:     decimal.NewFromInt(100),
			Year4Reward:    decimal.NewFromInt(150),
		}),
	}
}

func TestBuildRewardRecords(t *testing.T) {
	s := testVoteService()
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	rewards := []reward.CuratorReward{
		{
			Author:        "author.one",
			Curator:       "curator.one",
			Permlink:      "match-report",
			Amount:        decimal.NewFromInt(100),
			VoteTimestamp: now.Add(-time.Hour),
			ProcessedAt:   now,
			TransactionId: "tx-1",
			VoteId:        "curator.one-author.one-match-report-42",
		},
	}

	records, outbox := s.buildRewardRecords(rewards, now)
	require.Len(t, records, 1)
	require.Len(t, outbox, 1)

	assert.Equal(t, "curator.one-author.one-match-report-42", records[0].VoteId)
	assert.Equal(t, "100.000", records[0].Amount)
	assert.Equal(t, records[0].Id, outbox[0].RefId)
	assert.Equal(t, "author.one", outbox[0].ToAccount)
	assert.Equal(t, "100.000", outbox[0].Quantity)
	assert.Equal(t, types.TransferStatusPending, outbox[0].Status)
}

func TestBuildUsageRowsAccumulatesPriorTotals(t *testing.T) {
	s := testVoteService()
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	result := reward.ProcessResult{
		Rewards: []reward.CuratorReward{
			{Curator: "curator.one", Amount: decimal.NewFromInt(100)},
		},
		UpdatedStats: map[string]int{"curator.one": 3},
	}
	prior := map[string]string{"curator.one": "200.000"}

	rows := s.buildUsageRows(result, prior, "2021-06-01", now)
	require.Len(t, rows, 1)
	assert.Equal(t, "curator.one_2021-06-01", rows[0].Id)
	assert.Equal(t, 3, rows[0].VotesUsed)
	assert.Equal(t, "300.000", rows[0].TotalRewarded)
}

func TestCompleteBlocksCutsPartialTailBlock(t *testing.T) {
	events := []*types.VoteEvent{
		{Id: 1, BlockNum: 10},
		{Id: 2, BlockNum: 10},
		{Id: 3, BlockNum: 11},
		{Id: 4, BlockNum: 12},
		{Id: 5, BlockNum: 12},
	}

	// a batch cut off inside block 12 must stop at block 11, so block 12 is
	// re-read whole next round
	trimmed := completeBlocks(events)
	require.Len(t, trimmed, 3)
	assert.Equal(t, uint64(11), trimmed[len(trimmed)-1].BlockNum)
}

func TestCompleteBlocksSingleBlockBatch(t *testing.T) {
	events := []*types.VoteEvent{
		{Id: 1, BlockNum: 42},
		{Id: 2, BlockNum: 42},
		{Id: 3, BlockNum: 42},
	}

	// every row belongs to one block: nothing can be kept, the caller has to
	// fetch the block in full
	assert.Empty(t, completeBlocks(events))
	assert.Empty(t, completeBlocks(nil))
}

func TestStopVoteServiceWithoutStart(t *testing.T) {
	s := testVoteService()
	// must return immediately when the service never started
	s.StopVoteService()
}

func TestDecimalFromRecord(t *testing.T) {
	v, err := decimalFromRecord("")
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = decimalFromRecord("12.500")
	require.NoError(t, err)
	assert.Equal(t, "12.5", v.String())

	_, err = decimalFromRecord("not-a-number")
	assert.Error(t, err)
}
