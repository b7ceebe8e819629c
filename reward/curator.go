package reward

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	YearDay = 365

	DefaultMaxVotesPerDay = 5

	// curator reward tier switches after the third platform year
	lastBaseRewardYear = 3
)

// CuratorVote is one vote event observed on chain. Immutable caller input.
type CuratorVote struct {
	Voter         string
	Author        string
	Permlink      string
	Weight        int64
	Timestamp     time.Time
	BlockNum      uint64
	TransactionId string
}

// CuratorReward is the computed payout for one eligible curator vote. VoteId
// carries the vote's replay-protection key so the caller can persist it next
// to the processed-vote set.
type CuratorReward struct {
	Author        string
	Curator       string
	Permlink      string
	Amount        decimal.Decimal
	VoteTimestamp time.Time
	ProcessedAt   time.Time
	TransactionId string
	VoteId        string
}

// SkippedVote records why a vote earned nothing; ineligibility is data, not an error.
type SkippedVote struct {
	Vote   CuratorVote
	Reason string
}

// ProcessResult carries the rewards of one batch plus the new daily counters
// the caller must persist together with them.
type ProcessResult struct {
	Rewards      []CuratorReward
	UpdatedStats map[string]int
	Skipped      []SkippedVote
}

// DailyStats is a reporting view over one curator's counters for one day.
type DailyStats struct {
	Curator        string
	Date           string
	VotesUsed      int
	VotesRemaining int
	TotalRewarded  decimal.Decimal
}

// CuratorConfig carries the designated curator list and the reward rule
// parameters, injected by the caller.
type CuratorConfig struct {
	Curators       []string
	MaxVotesPerDay int
	LaunchDate     time.Time
	BaseReward     decimal.Decimal
	Year4Reward    decimal.Decimal
}

type CuratorProcessor struct {
	curators       map[string]bool
	maxVotesPerDay int
	launchDate     time.Time
	baseReward     decimal.Decimal
	year4Reward    decimal.Decimal
}

func NewCuratorProcessor(cfg CuratorConfig) *CuratorProcessor {
	curators := make(map[string]bool, len(cfg.Curators))
	for _, c := range cfg.Curators {
		curators[c] = true
	}
	maxPerDay := cfg.MaxVotesPerDay
	if maxPerDay <= 0 {
		maxPerDay = DefaultMaxVotesPerDay
	}
	return &CuratorProcessor{
		curators:       curators,
		maxVotesPerDay: maxPerDay,
		launchDate:     cfg.LaunchDate,
		baseReward:     cfg.BaseReward,
		year4Reward:    cfg.Year4Reward,
	}
}

// VoteUniqueId derives the replay-protection key of a vote. Two votes with the
// same voter, author, permlink and block number are the same on-chain event.
func VoteUniqueId(v CuratorVote) string {
	return fmt.Sprintf("%s-%s-%s-%d", v.Voter, v.Author, v.Permlink, v.BlockNum)
}

// IsCurator reports whether an account is on the designated curator list.
func (p *CuratorProcessor) IsCurator(account string) bool {
	return p.curators[account]
}

// FilterVotes is the stateless pre-filter: it drops votes from non-curators,
// non-positive weights (downvotes and null votes) and votes whose unique id is
// already in the caller-supplied processed set. Order is preserved.
func (p *CuratorProcessor) FilterVotes(votes []CuratorVote, processedIds map[string]bool) []CuratorVote {
	var filtered []CuratorVote
	for _, v := range votes {
		if !p.IsCurator(v.Voter) || v.Weight <= 0 {
			continue
		}
		if processedIds[VoteUniqueId(v)] {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered
}

// Process applies the per-vote eligibility rules and the daily vote cap to a
// batch of pre-filtered votes. The cap is applied strictly in input order: the
// running counter is threaded through the batch, so once a curator hits the
// cap mid-batch every later vote of theirs is skipped. dailyCounts is not
// mutated; the updated counters come back in the result.
func (p *CuratorProcessor) Process(votes []CuratorVote, dailyCounts map[string]int, now time.Time) ProcessResult {
	result := ProcessResult{
		Rewards:      []CuratorReward{},
		UpdatedStats: make(map[string]int, len(dailyCounts)),
		Skipped:      []SkippedVote{},
	}
	for curator, count := range dailyCounts {
		result.UpdatedStats[curator] = count
	}

	amount := p.RewardAmount(now)
	for _, v := range votes {
		if !p.IsCurator(v.Voter) {
			result.Skipped = append(result.Skipped, SkippedVote{
				Vote:   v,
				Reason: fmt.Sprintf("voter %s is not a designated curator", v.Voter),
			})
			continue
		}
		used := result.UpdatedStats[v.Voter]
		if used >= p.maxVotesPerDay {
			result.Skipped = append(result.Skipped, SkippedVote{
				Vote:   v,
				Reason: fmt.Sprintf("curator %s reached the daily vote limit (%d/%d)", v.Voter, used, p.maxVotesPerDay),
			})
			continue
		}
		result.Rewards = append(result.Rewards, CuratorReward{
			Author:        v.Author,
			Curator:       v.Voter,
			Permlink:      v.Permlink,
			Amount:        amount,
			VoteTimestamp: v.Timestamp,
			ProcessedAt:   now,
			TransactionId: v.TransactionId,
			VoteId:        VoteUniqueId(v),
		})
		result.UpdatedStats[v.Voter] = used + 1
	}
	return result
}

// PlatformYear returns the 1-based platform year of t relative to launch.
func PlatformYear(t time.Time, launch time.Time) int64 {
	diff := t.Unix() - launch.Unix()
	if diff < 0 {
		return 0
	}
	return diff/(YearDay*86400) + 1
}

// RewardAmount returns the per-vote curator reward in effect at t: the base
// amount during platform years 1-3, the raised amount from year 4 on.
func (p *CuratorProcessor) RewardAmount(t time.Time) decimal.Decimal {
	if PlatformYear(t, p.launchDate) > lastBaseRewardYear {
		return p.year4Reward
	}
	return p.baseReward
}

// BuildDailyStats builds the per-curator reporting view for one day from the
// updated counters and the rewards paid in this batch.
func (p *CuratorProcessor) BuildDailyStats(stats map[string]int, rewards []CuratorReward, day time.Time) []DailyStats {
	rewarded := make(map[string]decimal.Decimal)
	for _, r := range rewards {
		rewarded[r.Curator] = rewarded[r.Curator].Add(r.Amount)
	}
	var list []DailyStats
	for curator, used := range stats {
		remaining := p.maxVotesPerDay - used
		if remaining < 0 {
			remaining = 0
		}
		list = append(list, DailyStats{
			Curator:        curator,
			Date:           day.UTC().Format("2006-01-02"),
			VotesUsed:      used,
			VotesRemaining: remaining,
			TotalRewarded:  rewarded[curator],
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Curator < list[j].Curator })
	return list
}
