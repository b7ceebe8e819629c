package reward

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStakingConfig() StakingConfig {
	return StakingConfig{
		AnnualRate:       decimal.NewFromFloat(0.12),
		MinStake:         decimal.NewFromInt(100),
		ExcludedAccounts: []string{"founder1", "founder2"},
	}
}

func testStakers() []StakerInfo {
	return []StakerInfo{
		{Account: "alice", Staked: decimal.NewFromInt(1000)},
		{Account: "bob", Staked: decimal.NewFromInt(500)},
		{Account: "carol", Staked: decimal.NewFromInt(2600)},
		{Account: "dave", Staked: decimal.NewFromInt(50)},       // below minimum
		{Account: "founder1", Staked: decimal.NewFromInt(9000)}, // excluded
	}
}

func TestCalculateStakingRewards(t *testing.T) {
	calc := NewStakingCalculator(testStakingConfig())
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	res := calc.Calculate(testStakers(), now)
	require.Equal(t, 5, res.StakerCount)
	require.Equal(t, 3, res.EligibleStakerCount)
	require.Len(t, res.Distributions, 3)
	assert.Equal(t, "2024-W07", res.WeekId)
	assert.Equal(t, "4100", res.TotalStaked.String())

	// 2600 * 0.12 / 52 = 6 exactly, descending order
	assert.Equal(t, "carol", res.Distributions[0].Account)
	assert.Equal(t, "6.000", res.Distributions[0].Amount.StringFixed(3))
	assert.Equal(t, "alice", res.Distributions[1].Account)
	assert.Equal(t, "2.308", res.Distributions[1].Amount.StringFixed(3))
	assert.Equal(t, "bob", res.Distributions[2].Account)
	assert.Equal(t, "1.154", res.Distributions[2].Amount.StringFixed(3))
}

func TestCalculateStakingRewardsDeterminism(t *testing.T) {
	calc := NewStakingCalculator(testStakingConfig())
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	first := calc.Calculate(testStakers(), now)
	second := calc.Calculate(testStakers(), now)
	require.Equal(t, first, second)
}

func TestCalculateStakingRewardsConservation(t *testing.T) {
	calc := NewStakingCalculator(testStakingConfig())
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	stakers := []StakerInfo{
		{Account: "a1", Staked: decimal.NewFromFloat(123.456)},
		{Account: "a2", Staked: decimal.NewFromFloat(7890.123)},
		{Account: "a3", Staked: decimal.NewFromFloat(455.001)},
		{Account: "a4", Staked: decimal.NewFromFloat(100.777)},
	}
	res := calc.Calculate(stakers, now)
	require.Len(t, res.Distributions, 4)

	sum := decimal.Zero
	for _, d := range res.Distributions {
		sum = sum.Add(d.Amount)
	}
	// per-entry 3-decimal rounding error bound
	tolerance := decimal.NewFromFloat(0.0005).Mul(decimal.NewFromInt(int64(len(res.Distributions))))
	assert.True(t, sum.Sub(res.WeeklyPool).Abs().LessThanOrEqual(tolerance),
		"sum %s deviates from pool %s beyond %s", sum, res.WeeklyPool, tolerance)
}

func TestCalculateStakingRewardsPercentages(t *testing.T) {
	calc := NewStakingCalculator(testStakingConfig())
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	res := calc.Calculate(testStakers(), now)
	require.NotEmpty(t, res.Distributions)

	sum := decimal.Zero
	for _, d := range res.Distributions {
		sum = sum.Add(d.Percentage)
	}
	tolerance := decimal.NewFromFloat(0.0001).Mul(decimal.NewFromInt(int64(len(res.Distributions))))
	assert.True(t, sum.Sub(decimal.NewFromInt(100)).Abs().LessThanOrEqual(tolerance),
		"percentages sum to %s", sum)
}

func TestCalculateStakingRewardsExclusions(t *testing.T) {
	calc := NewStakingCalculator(testStakingConfig())
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	res := calc.Calculate(testStakers(), now)
	for _, d := range res.Distributions {
		assert.NotEqual(t, "dave", d.Account, "below-minimum staker must not be rewarded")
		assert.NotEqual(t, "founder1", d.Account, "excluded account must not be rewarded")
	}
}

func TestCalculateStakingRewardsZeroPopulation(t *testing.T) {
	calc := NewStakingCalculator(testStakingConfig())
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	for _, stakers := range [][]StakerInfo{
		nil,
		{},
		{{Account: "a", Staked: decimal.Zero}},
	} {
		res := calc.Calculate(stakers, now)
		assert.Equal(t, 0, res.EligibleStakerCount)
		assert.Empty(t, res.Distributions)
		assert.True(t, res.TotalStaked.IsZero())
		assert.True(t, res.WeeklyPool.IsZero())
		assert.Equal(t, "2024-W07", res.WeekId)
	}
}

func TestCalculateStakingRewardsNegativeStake(t *testing.T) {
	calc := NewStakingCalculator(testStakingConfig())
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	stakers := []StakerInfo{
		{Account: "alice", Staked: decimal.NewFromInt(1000)},
		{Account: "mallory", Staked: decimal.NewFromInt(-500)},
	}
	res := calc.Calculate(stakers, now)
	require.Equal(t, 1, res.EligibleStakerCount)
	require.Len(t, res.Distributions, 1)
	assert.Equal(t, "alice", res.Distributions[0].Account)
	assert.Equal(t, "1000", res.TotalStaked.String())
}

func TestCalculateStakingRewardsStableTieOrder(t *testing.T) {
	calc := NewStakingCalculator(testStakingConfig())
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)

	stakers := []StakerInfo{
		{Account: "zeta", Staked: decimal.NewFromInt(700)},
		{Account: "alpha", Staked: decimal.NewFromInt(700)},
		{Account: "mid", Staked: decimal.NewFromInt(900)},
	}
	res := calc.Calculate(stakers, now)
	require.Len(t, res.Distributions, 3)
	assert.Equal(t, "mid", res.Distributions[0].Account)
	// equal amounts keep snapshot order
	assert.Equal(t, "zeta", res.Distributions[1].Account)
	assert.Equal(t, "alpha", res.Distributions[2].Account)
}
