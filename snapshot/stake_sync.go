package snapshot

import (
	"time"

	"github.com/sirupsen/logrus"

	"medals_reward/config"
	"medals_reward/db"
	"medals_reward/logs"
	"medals_reward/reward"
	"medals_reward/types"
	"medals_reward/utils"
)

// StakeSyncService periodically copies the staker population from the observe
// node into local snapshot rows; the weekly distribution consumes the latest
// complete round instead of racing a live table.
type StakeSyncService struct {
	stopCh chan bool
	logger *logrus.Logger
}

func NewStakeSyncService() (*StakeSyncService, error) {
	service := &StakeSyncService{
		logger: logs.GetLogger(),
	}
	return service, nil
}

func (s *StakeSyncService) StartSyncService() {
	s.stopCh = make(chan bool)
	ticker := time.NewTicker(time.Duration(config.SnapshotInterval) * time.Second)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.snapshot()
			case <-s.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

func (s *StakeSyncService) StopSyncService() {
	if s.stopCh == nil {
		return
	}
	s.stopCh <- true
	close(s.stopCh)
	s.stopCh = nil
}

func (s *StakeSyncService) snapshot() {
	curTime := time.Now().UTC()
	s.logger.Infof("Start stake snapshot: the timestamp is %v", curTime.Unix())

	balances, err := db.GetStakedBalances(reward.TokenSymbol)
	if err != nil {
		s.logger.Errorf("snapshot: fail to get staked balances, the error is %v", err)
		return
	}
	if len(balances) == 0 {
		s.logger.Infof("snapshot: no staked balances on time:%v", curTime.Unix())
		return
	}

	list := make([]*types.StakeSnapshot, 0, len(balances))
	for _, b := range balances {
		list = append(list, &types.StakeSnapshot{
			SnapshotId: utils.GenerateId(curTime, b.Account, "snapshot"),
			Account:    b.Account,
			Staked:     b.Stake,
			Time:       curTime.Unix(),
		})
	}
	if err := db.BatchInsertStakeSnapshots(list); err != nil {
		s.logger.Errorf("snapshot: fail to batch insert stake snapshots on time:%v, the error is %v", curTime.Unix(), err)
		return
	}
	s.logger.Infof("Finish this round stake snapshot, %v accounts", len(list))
}
