package reward

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// token amounts carry 3 decimal places on the side chain, percentages 4
	AmountPrecision     = 3
	PercentagePrecision = 4

	WeeksPerYear = 52
)

// StakerInfo is one account's staked balance at snapshot time.
type StakerInfo struct {
	Account string
	Staked  decimal.Decimal
}

// RewardDistribution is a single staker's payout in one weekly run.
type RewardDistribution struct {
	Account    string
	Amount     decimal.Decimal
	Percentage decimal.Decimal
}

// DistributionResult aggregates one full weekly staking run.
type DistributionResult struct {
	WeekId              string
	WeeklyPool          decimal.Decimal
	TotalStaked         decimal.Decimal
	StakerCount         int
	EligibleStakerCount int
	Distributions       []RewardDistribution
	AnnualRate          decimal.Decimal
	CalculatedAt        time.Time
}

// StakingConfig carries the calculation parameters. It is built by the caller
// (from file config in this service) and injected, so the calculator itself
// never reads ambient state.
type StakingConfig struct {
	AnnualRate       decimal.Decimal
	MinStake         decimal.Decimal
	ExcludedAccounts []string
}

type StakingCalculator struct {
	annualRate decimal.Decimal
	minStake   decimal.Decimal
	excluded   map[string]bool
}

func NewStakingCalculator(cfg StakingConfig) *StakingCalculator {
	excluded := make(map[string]bool, len(cfg.ExcludedAccounts))
	for _, acct := range cfg.ExcludedAccounts {
		excluded[acct] = true
	}
	return &StakingCalculator{
		annualRate: cfg.AnnualRate,
		minStake:   cfg.MinStake,
		excluded:   excluded,
	}
}

// Calculate computes the weekly fixed-APR payout for every eligible staker.
// Each staker earns staked * rate / 52 independently; the pool figure is the
// sum over eligible stake and is informational, not a cap. Callers must pass
// each account at most once, duplicates are not merged here.
// An empty or fully ineligible population yields a valid zero result.
func (c *StakingCalculator) Calculate(stakers []StakerInfo, now time.Time) DistributionResult {
	result := DistributionResult{
		WeekId:        WeekId(now),
		WeeklyPool:    decimal.Zero,
		TotalStaked:   decimal.Zero,
		StakerCount:   len(stakers),
		Distributions: []RewardDistribution{},
		AnnualRate:    c.annualRate,
		CalculatedAt:  now,
	}

	var eligible []StakerInfo
	totalStaked := decimal.Zero
	for _, s := range stakers {
		// negative stake is a caller bug, clamp to zero and drop the account
		if s.Staked.IsNegative() {
			continue
		}
		if s.Staked.LessThan(c.minStake) || c.excluded[s.Account] {
			continue
		}
		eligible = append(eligible, s)
		totalStaked = totalStaked.Add(s.Staked)
	}

	if totalStaked.IsZero() {
		return result
	}

	result.TotalStaked = totalStaked
	result.EligibleStakerCount = len(eligible)
	result.WeeklyPool = c.weeklyReward(totalStaked)

	hundred := decimal.NewFromInt(100)
	for _, s := range eligible {
		result.Distributions = append(result.Distributions, RewardDistribution{
			Account:    s.Account,
			Amount:     c.weeklyReward(s.Staked),
			Percentage: s.Staked.Div(totalStaked).Mul(hundred).Round(PercentagePrecision),
		})
	}

	// descending by amount, ties keep snapshot order
	sort.SliceStable(result.Distributions, func(i, j int) bool {
		return result.Distributions[i].Amount.GreaterThan(result.Distributions[j].Amount)
	})
	return result
}

func (c *StakingCalculator) weeklyReward(staked decimal.Decimal) decimal.Decimal {
	return staked.Mul(c.annualRate).Div(decimal.NewFromInt(WeeksPerYear)).Round(AmountPrecision)
}
