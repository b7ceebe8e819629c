package reward

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLaunchDate = time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)

func testCuratorConfig() CuratorConfig {
	return CuratorConfig{
		Curators:       []string{"curator1", "curator2"},
		MaxVotesPerDay: 5,
		LaunchDate:     testLaunchDate,
		BaseReward:     decimal.NewFromInt(100),
		Year4Reward:    decimal.NewFromInt(150),
	}
}

func makeVote(voter, author, permlink string, blockNum uint64) CuratorVote {
	return CuratorVote{
		Voter:         voter,
		Author:        author,
		Permlink:      permlink,
		Weight:        10000,
		Timestamp:     time.Date(2021, 6, 1, 10, 0, 0, 0, time.UTC),
		BlockNum:      blockNum,
		TransactionId: fmt.Sprintf("tx-%d", blockNum),
	}
}

func TestFilterVotes(t *testing.T) {
	p := NewCuratorProcessor(testCuratorConfig())
	downvote := makeVote("curator1", "author1", "post-a", 100)
	downvote.Weight = -10000
	processed := makeVote("curator1", "author2", "post-b", 101)
	votes := []CuratorVote{
		downvote,
		processed,
		makeVote("stranger", "author1", "post-a", 102),
		makeVote("curator2", "author3", "post-c", 103),
	}
	processedIds := map[string]bool{VoteUniqueId(processed): true}

	filtered := p.FilterVotes(votes, processedIds)
	require.Len(t, filtered, 1)
	assert.Equal(t, "curator2", filtered[0].Voter)
}

func TestFilterVotesReplayRejection(t *testing.T) {
	p := NewCuratorProcessor(testCuratorConfig())
	vote := makeVote("curator1", "author1", "post-a", 100)

	filtered := p.FilterVotes([]CuratorVote{vote}, map[string]bool{})
	require.Len(t, filtered, 1)

	// same voter, author, permlink and block number is the same chain event
	replay := vote
	replay.TransactionId = "tx-other"
	filtered = p.FilterVotes([]CuratorVote{replay}, map[string]bool{VoteUniqueId(vote): true})
	assert.Empty(t, filtered)
}

func TestProcessDailyCapEnforcement(t *testing.T) {
	p := NewCuratorProcessor(testCuratorConfig())
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	votes := []CuratorVote{
		makeVote("curator1", "author1", "post-a", 200),
		makeVote("curator1", "author2", "post-b", 201),
		makeVote("curator1", "author3", "post-c", 202),
	}

	res := p.Process(votes, map[string]int{"curator1": 4}, now)
	require.Len(t, res.Rewards, 1)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "author1", res.Rewards[0].Author)
	assert.Equal(t, 5, res.UpdatedStats["curator1"])
	for _, s := range res.Skipped {
		assert.Contains(t, s.Reason, "daily vote limit")
	}
}

func TestProcessCapAppliesInBatchOrder(t *testing.T) {
	p := NewCuratorProcessor(testCuratorConfig())
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	var votes []CuratorVote
	for i := 0; i < 7; i++ {
		votes = append(votes, makeVote("curator2", "author1", fmt.Sprintf("post-%d", i), uint64(300+i)))
	}

	res := p.Process(votes, map[string]int{}, now)
	require.Len(t, res.Rewards, 5)
	require.Len(t, res.Skipped, 2)
	// the first five in input order are paid, the rest skipped
	for i, r := range res.Rewards {
		assert.Equal(t, fmt.Sprintf("post-%d", i), r.Permlink)
	}
	assert.Equal(t, "post-5", res.Skipped[0].Vote.Permlink)
	assert.Equal(t, "post-6", res.Skipped[1].Vote.Permlink)
}

func TestProcessSkipsNonCurator(t *testing.T) {
	p := NewCuratorProcessor(testCuratorConfig())
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

	res := p.Process([]CuratorVote{makeVote("stranger", "author1", "post-a", 400)}, map[string]int{}, now)
	assert.Empty(t, res.Rewards)
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Reason, "not a designated curator")
	_, tracked := res.UpdatedStats["stranger"]
	assert.False(t, tracked, "skipped voter must not consume quota")
}

func TestProcessDoesNotMutateInputCounters(t *testing.T) {
	p := NewCuratorProcessor(testCuratorConfig())
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	counts := map[string]int{"curator1": 2}

	res := p.Process([]CuratorVote{makeVote("curator1", "author1", "post-a", 500)}, counts, now)
	assert.Equal(t, 2, counts["curator1"])
	assert.Equal(t, 3, res.UpdatedStats["curator1"])
}

func TestPlatformYear(t *testing.T) {
	assert.Equal(t, int64(1), PlatformYear(testLaunchDate, testLaunchDate))
	assert.Equal(t, int64(1), PlatformYear(testLaunchDate.AddDate(0, 6, 0), testLaunchDate))
	assert.Equal(t, int64(3), PlatformYear(testLaunchDate.Add(2*YearDay*86400*time.Second+time.Hour), testLaunchDate))
	assert.Equal(t, int64(4), PlatformYear(testLaunchDate.Add(3*YearDay*86400*time.Second), testLaunchDate))
	assert.Equal(t, int64(0), PlatformYear(testLaunchDate.Add(-time.Hour), testLaunchDate))
}

func TestRewardAmountByPlatformYear(t *testing.T) {
	p := NewCuratorProcessor(testCuratorConfig())

	yearTwo := testLaunchDate.AddDate(1, 2, 0)
	assert.Equal(t, "100", p.RewardAmount(yearTwo).String())

	yearFive := testLaunchDate.Add(4 * YearDay * 86400 * time.Second)
	assert.Equal(t, "150", p.RewardAmount(yearFive).String())
}

func TestBuildDailyStats(t *testing.T) {
	p := NewCuratorProcessor(testCuratorConfig())
	day := time.Date(2021, 6, 1, 18, 0, 0, 0, time.UTC)
	stats := map[string]int{"curator1": 5, "curator2": 1}
	rewards := []CuratorReward{
		{Curator: "curator2", Amount: decimal.NewFromInt(100)},
	}

	list := p.BuildDailyStats(stats, rewards, day)
	require.Len(t, list, 2)
	assert.Equal(t, "curator1", list[0].Curator)
	assert.Equal(t, "2021-06-01", list[0].Date)
	assert.Equal(t, 5, list[0].VotesUsed)
	assert.Equal(t, 0, list[0].VotesRemaining)
	assert.Equal(t, "curator2", list[1].Curator)
	assert.Equal(t, 4, list[1].VotesRemaining)
	assert.Equal(t, "100", list[1].TotalRewarded.String())
}
