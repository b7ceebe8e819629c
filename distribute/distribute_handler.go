package distribute

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"medals_reward/config"
	"medals_reward/db"
	"medals_reward/logs"
	"medals_reward/reward"
	"medals_reward/types"
	"medals_reward/utils"
)

var sv *RewardDistributeService

type RewardDistributeService struct {
	logger     *logrus.Logger
	cron       *cron.Cron
	clock      clockwork.Clock
	calculator *reward.StakingCalculator
	isHandling bool
}

func NewDistributeService(clock clockwork.Clock) *RewardDistributeService {
	return &RewardDistributeService{
		logger:     logs.GetLogger(),
		cron:       cron.New(),
		clock:      clock,
		calculator: reward.NewStakingCalculator(config.GetStakingConfig()),
	}
}

func StartDistributeService() error {
	sv = NewDistributeService(clockwork.NewRealClock())
	spec := config.GetDistributeCronSpec()
	err := sv.cron.AddFunc(spec, sv.startDistribute)
	if err != nil {
		sv.logger.Errorf("StartDistributeService: fail to start distribute service, the error is %v", err)
		return err
	}
	sv.cron.Start()
	return nil
}

func StopDistributeService() {
	if sv != nil && sv.cron != nil {
		sv.cron.Stop()
	}
}

func (sv *RewardDistributeService) startDistribute() {
	sv.logger.Infof("Start this week's staking reward distribution")
	if sv.isHandling {
		sv.logger.Infoln("last round distribute not finish")
		return
	}
	sv.isHandling = true
	defer func() {
		sv.isHandling = false
	}()
	if err := sv.DistributeWeek(); err != nil {
		sv.logger.Errorf("startDistribute: distribution failed, the error is %v", err)
	}
}

// DistributeWeek runs one weekly staking distribution: snapshot in, pure
// calculation, idempotency claim, solvency pre-flight, then reward records and
// transfer instructions out. Safe to invoke repeatedly; a week that finished
// is never paid twice, while a week stuck in a failed or insufficient-funds
// state is reclaimed and retried.
func (sv *RewardDistributeService) DistributeWeek() error {
	now := sv.clock.Now().UTC()
	weekId := reward.WeekId(now)
	sv.logger.Infof("DistributeWeek: start distribution for week %v", weekId)

	var (
		stakers   []reward.StakerInfo
		available decimal.Decimal
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		stakers, err = sv.loadStakerSnapshot()
		return err
	})
	g.Go(func() error {
		var err error
		available, err = db.GetAccountBalance(config.GetRewardsAccount(), reward.TokenSymbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fail to load distribution inputs, the error is %v", err)
	}
	sv.logger.Infof("DistributeWeek: staker snapshot size is %v, rewards account balance is %v", len(stakers), available.StringFixed(3))

	result := sv.calculator.Calculate(stakers, now)
	sv.logger.Infof("DistributeWeek: eligible stakers %v of %v, weekly pool %v", result.EligibleStakerCount, result.StakerCount, result.WeeklyPool.StringFixed(3))

	// claim the week before anything is enqueued; a duplicate key here means
	// another run already owns it
	rec := &types.WeeklyDistributionRecord{
		WeekId:              result.WeekId,
		PoolAmount:          result.WeeklyPool.StringFixed(3),
		TotalStaked:         result.TotalStaked.String(),
		StakerCount:         result.StakerCount,
		EligibleStakerCount: result.EligibleStakerCount,
		AnnualRate:          result.AnnualRate.String(),
		Status:              types.DistributionStatusProcessing,
		Time:                now.Unix(),
	}
	if err := db.InsertWeeklyDistribution(rec); err != nil {
		if err != db.ErrWeekAlreadyDistributed {
			return err
		}
		existing, getErr := db.GetWeeklyDistribution(weekId)
		if getErr != nil {
			return getErr
		}
		if existing == nil || !retryableDistributionStatus(existing.Status) {
			sv.logger.Infof("DistributeWeek: week %v is already claimed by an earlier run, nothing to do", weekId)
			return nil
		}
		sv.logger.Infof("DistributeWeek: reclaiming week %v after status %v", weekId, existing.Status)
		if err := db.ResetWeeklyDistribution(rec); err != nil {
			return err
		}
	}

	if result.EligibleStakerCount == 0 {
		sv.logger.Infof("DistributeWeek: no eligible stakers for week %v", weekId)
		return db.UpdateWeeklyDistributionStatus(weekId, types.DistributionStatusDistributed)
	}

	required := decimal.Zero
	for _, d := range result.Distributions {
		required = required.Add(d.Amount)
	}
	check := reward.ValidateRewardsBalance(available, required)
	if !check.Valid {
		sv.logger.Errorf("DistributeWeek: %v", check.Message)
		if err := db.UpdateWeeklyDistributionStatus(weekId, types.DistributionStatusInsufficientFunds); err != nil {
			sv.logger.Errorf("DistributeWeek: fail to mark week %v insufficient, the error is %v", weekId, err)
		}
		return fmt.Errorf("insufficient rewards balance for week %v, shortfall %v", weekId, check.Shortfall.StringFixed(3))
	}

	memo := fmt.Sprintf("weekly staking reward %s", weekId)
	var rewards []*types.StakingRewardRecord
	var outbox []*types.TransferOutbox
	for _, d := range result.Distributions {
		recId := utils.GenerateId(now, d.Account, weekId, "staking")
		rewards = append(rewards, &types.StakingRewardRecord{
			Id:         recId,
			WeekId:     weekId,
			Account:    d.Account,
			Amount:     d.Amount.StringFixed(3),
			Percentage: d.Percentage.StringFixed(4),
			Time:       now.Unix(),
		})
		op, ok := reward.BuildTransfer(d.Account, d.Amount, memo)
		if !ok {
			continue
		}
		outbox = append(outbox, &types.TransferOutbox{
			Id:             utils.GenerateId(now, d.Account, weekId, "transfer"),
			RefId:          recId,
			ContractName:   op.ContractName,
			ContractAction: op.ContractAction,
			Symbol:         op.ContractPayload.Symbol,
			ToAccount:      op.ContractPayload.To,
			Quantity:       op.ContractPayload.Quantity,
			Memo:           op.ContractPayload.Memo,
			Status:         types.TransferStatusPending,
			Time:           now.Unix(),
		})
	}

	if err := db.SaveWeeklyRewards(weekId, rewards, outbox); err != nil {
		sv.logger.Errorf("DistributeWeek: fail to save weekly rewards, the error is %v", err)
		if mdErr := db.UpdateWeeklyDistributionStatus(weekId, types.DistributionStatusFailed); mdErr != nil {
			sv.logger.Errorf("DistributeWeek: fail to mark week %v failed, the error is %v", weekId, mdErr)
		}
		return err
	}
	sv.logger.Infof("DistributeWeek: finished week %v, %v rewards and %v transfers enqueued", weekId, len(rewards), len(outbox))
	return nil
}

// retryableDistributionStatus reports whether a week that already carries a
// record is safe to distribute again: a failed save rolled back atomically and
// an insufficient-funds week never enqueued anything.
func retryableDistributionStatus(status int) bool {
	return status == types.DistributionStatusFailed || status == types.DistributionStatusInsufficientFunds
}

// loadStakerSnapshot prefers the latest local snapshot round and falls back to
// a live observe-db read when no snapshot has been taken yet.
func (sv *RewardDistributeService) loadStakerSnapshot() ([]reward.StakerInfo, error) {
	snaps, err := db.GetLatestStakeSnapshot()
	if err != nil {
		return nil, err
	}
	if len(snaps) > 0 {
		var stakers []reward.StakerInfo
		for _, s := range snaps {
			staked, err := decimal.NewFromString(s.Staked)
			if err != nil {
				sv.logger.Errorf("loadStakerSnapshot: fail to convert staked %v of %v, the error is %v", s.Staked, s.Account, err)
				continue
			}
			stakers = append(stakers, reward.StakerInfo{Account: s.Account, Staked: staked})
		}
		return stakers, nil
	}

	balances, err := db.GetStakedBalances(reward.TokenSymbol)
	if err != nil {
		return nil, err
	}
	var stakers []reward.StakerInfo
	for _, b := range balances {
		staked, err := decimal.NewFromString(b.Stake)
		if err != nil {
			sv.logger.Errorf("loadStakerSnapshot: fail to convert stake %v of %v, the error is %v", b.Stake, b.Account, err)
			continue
		}
		stakers = append(stakers, reward.StakerInfo{Account: b.Account, Staked: staked})
	}
	return stakers, nil
}
