package check

import (
	"time"

	"github.com/shopspring/decimal"

	"medals_reward/config"
	"medals_reward/db"
	"medals_reward/logs"
	"medals_reward/types"
)

// rounding error allowed per reward record; amounts carry 3 decimals
var auditToleranceUnit = decimal.NewFromFloat(0.0005)

type DistributionAuditChecker struct {
	isChecking bool
	stopCh     chan bool
}

func NewDistributionAuditChecker() *DistributionAuditChecker {
	return &DistributionAuditChecker{
		isChecking: false,
	}
}

func (checker *DistributionAuditChecker) StartCheck() {
	checker.stopCh = make(chan bool)
	ticker := time.NewTicker(time.Duration(config.AuditCheckInterval) * time.Second)
	go func() {
		for {
			select {
			case <-ticker.C:
				checker.checkDistributions()
			case <-checker.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

func (checker *DistributionAuditChecker) StopCheck() {
	if checker.stopCh == nil {
		return
	}
	checker.stopCh <- true
	close(checker.stopCh)
	checker.stopCh = nil
}

// checkDistributions re-verifies conservation of every distributed week: the
// sum of the persisted per-staker amounts must match the recorded pool within
// the per-record rounding bound.
func (checker *DistributionAuditChecker) checkDistributions() {
	logger := logs.GetLogger()
	if checker.isChecking {
		logger.Errorf("Last round audit check not finish")
		return
	}
	logger.Debugln("start new round distribution audit")
	checker.isChecking = true
	defer func() {
		checker.isChecking = false
	}()

	records, err := db.GetDistributionsByStatus(types.DistributionStatusDistributed)
	if err != nil {
		logger.Errorf("checkDistributions: fail to get distribution records, the error is %v", err)
		return
	}
	for _, rec := range records {
		status, err := checker.auditWeek(rec)
		if err != nil {
			logger.Errorf("checkDistributions: fail to audit week %v, the error is %v", rec.WeekId, err)
			continue
		}
		if err := db.UpdateWeeklyDistributionStatus(rec.WeekId, status); err != nil {
			logger.Errorf("checkDistributions: fail to update status of week %v, the error is %v", rec.WeekId, err)
		}
		if status == types.DistributionStatusAuditFailed {
			logger.Errorf("checkDistributions: conservation audit FAILED for week %v", rec.WeekId)
		}
	}
	logger.Debugln("Finish this round distribution audit")
}

func (checker *DistributionAuditChecker) auditWeek(rec *types.WeeklyDistributionRecord) (int, error) {
	rewards, err := db.GetStakingRewardsByWeek(rec.WeekId)
	if err != nil {
		return 0, err
	}
	pool, err := decimal.NewFromString(rec.PoolAmount)
	if err != nil {
		return 0, err
	}
	sum := decimal.Zero
	for _, r := range rewards {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return 0, err
		}
		sum = sum.Add(amount)
	}
	tolerance := auditToleranceUnit.Mul(decimal.NewFromInt(int64(len(rewards))))
	if sum.Sub(pool).Abs().GreaterThan(tolerance) {
		return types.DistributionStatusAuditFailed, nil
	}
	return types.DistributionStatusAudited, nil
}
