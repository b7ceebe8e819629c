package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"medals_reward/config"
	"medals_reward/logs"
	"medals_reward/types"
)

var (
	// ErrWeekAlreadyDistributed is returned by InsertWeeklyDistribution when a
	// record for the same ISO week already exists: the idempotency guard that
	// keeps overlapping scheduler runs from paying the same week twice.
	ErrWeekAlreadyDistributed = errors.New("distribution record for this week already exists")

	serDB         *gorm.DB
	observeDb     *gorm.DB
	observeDbHost string
	curHeadBlock  uint64
	checkInterval = 1 * time.Minute
	stop          chan bool
)

func StartDbService() error {
	logger := logs.GetLogger()
	logger.Debugln("Start db service")
	db, err := getServiceDB()
	if err != nil {
		logger.Errorf("StartDbService: fail to get db, the error is %v", err)
		return err
	}
	serDB = db
	//create tables if not exist
	err = createTables(serDB)
	if err != nil {
		return err
	}

	nodeDb, err := getObserveNodeDb()
	if err != nil {
		logger.Errorf("StartDbService: fail to get observe node db, the error is %v", err)
		return err
	}
	observeDb = nodeDb
	stop = make(chan bool)
	checkObserveDbValid()
	return nil
}

func createTables(db *gorm.DB) (err error) {
	if db == nil {
		return errors.New("service db is empty")
	}
	logger := logs.GetLogger()
	tables := []interface{}{
		&types.WeeklyDistributionRecord{},
		&types.StakingRewardRecord{},
		&types.CuratorRewardRecord{},
		&types.ProcessedVote{},
		&types.CuratorDailyUsage{},
		&types.TransferOutbox{},
		&types.StakeSnapshot{},
		&types.SyncCheckpoint{},
	}
	for _, table := range tables {
		if !db.HasTable(table) {
			if err = db.CreateTable(table).Error; err != nil {
				logger.Errorf("fail to create table for %T, the error is %v", table, err)
				return err
			}
		}
	}
	return
}

func getObserveNodeDb() (*gorm.DB, error) {
	if observeDb != nil {
		return observeDb, nil
	}
	logger := logs.GetLogger()
	list, err := config.GetObserveNodeDbConfigList()
	if err != nil {
		logger.Errorf("getObserveNodeDb: fail to get observe node db config, the error is %v", err)
		return nil, errors.New("open db: fail to get observe node db config")
	}
	var dbErr error
	for _, cf := range list {
		db, err := openDb(cf)
		if err != nil {
			logger.Errorf("getObserveNodeDb: fail to open db, the error is %v", err)
			dbErr = err
		} else if db != nil {
			observeDbHost = cf.Host
			observeDb = db
			return db, nil
		}
	}
	return nil, dbErr
}

// get database of reward service
func getServiceDB() (*gorm.DB, error) {
	log := logs.GetLogger()
	if serDB == nil {
		dbCfg, err := config.GetRewardDbConfig()
		if err != nil {
			log.Errorf("getServiceDB: fail to get db config, the error is %v", err)
			return nil, errors.New("open db: fail to get service db config")
		}
		db, err := openDb(dbCfg)
		if err != nil {
			log.Errorf("getServiceDB: fail to open db, the error is %v", err)
			return nil, errors.New("open db: fail to open")
		}
		return db, nil
	}
	return serDB, nil
}

func openDb(dbCfg *config.DbConfig) (*gorm.DB, error) {
	log := logs.GetLogger()
	source := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DbName)
	db, err := gorm.Open(dbCfg.Driver, source)
	if err != nil {
		log.Errorf("openDb: fail to open db: %v, the error is %v", dbCfg, err)
		return nil, errors.New("fail to open db")
	}
	return db, nil
}

// Timing check the observe database status regularly(check head block change)
func checkObserveDbValid() {
	ticker := time.NewTicker(checkInterval)
	go func() {
		for {
			select {
			case <-ticker.C:
				checkChainStatus()
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()
}

// A stalled head block means the observe node stopped indexing; switch to the
// next configured observe db.
func checkChainStatus() {
	logger := logs.GetLogger()
	if observeDb == nil {
		return
	}
	var status types.ChainStatus
	err := observeDb.Take(&status).Error
	if err != nil {
		logger.Errorf("checkChainStatus: fail to get chain status from observe db, the error is %v", err)
		return
	}
	if status.HeadBlockNumber <= curHeadBlock {
		logger.Infof("checkChainStatus: head block %v has not advanced past %v, need to switch observe node db", status.HeadBlockNumber, curHeadBlock)
		list, err := config.GetObserveNodeDbConfigList()
		if err != nil {
			logger.Errorf("checkChainStatus: fail to get db config list, the error is %v", err)
			return
		}
		for _, cf := range list {
			if cf.Host == observeDbHost {
				continue
			}
			db, err := openDb(cf)
			if err == nil {
				logger.Infof("checkChainStatus: success to switch observe db:%v to new db:%v", observeDbHost, cf.Host)
				observeDb = db
				observeDbHost = cf.Host
				break
			}
			logger.Errorf("checkChainStatus: fail to switch new db, the error is %v", err)
		}
	}
	curHeadBlock = status.HeadBlockNumber
}

func CloseDbService() {
	logger := logs.GetLogger()
	logger.Infoln("Close mysql database")
	if stop != nil {
		close(stop)
	}
	if serDB != nil {
		if err := serDB.Close(); err != nil {
			logger.Errorf("Fail to close service db, the error is %v", err)
		}
	}
	if observeDb != nil {
		if err := observeDb.Close(); err != nil {
			logger.Errorf("Fail to close observe node db, the error is %v", err)
		}
	}
}

//
// ---- weekly staking distribution ----
//

// InsertWeeklyDistribution creates the idempotency record of a weekly run.
// The week id is the primary key, so a second run inside the same ISO week
// gets ErrWeekAlreadyDistributed from the unique constraint instead of a
// second payout.
func InsertWeeklyDistribution(rec *types.WeeklyDistributionRecord) error {
	db, err := getServiceDB()
	if err != nil {
		return err
	}
	if err := db.Create(rec).Error; err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return ErrWeekAlreadyDistributed
		}
		return err
	}
	return nil
}

func UpdateWeeklyDistributionStatus(weekId string, status int) error {
	db, err := getServiceDB()
	if err != nil {
		return err
	}
	return db.Model(&types.WeeklyDistributionRecord{}).Where("week_id = ?", weekId).Update("status", status).Error
}

// GetWeeklyDistribution returns the record of one week, nil when the week has
// no record yet.
func GetWeeklyDistribution(weekId string) (*types.WeeklyDistributionRecord, error) {
	db, err := getServiceDB()
	if err != nil {
		return nil, err
	}
	var rec types.WeeklyDistributionRecord
	err = db.Where("week_id = ?", weekId).Take(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ResetWeeklyDistribution overwrites the existing record of a week being
// retried, so the retry starts from freshly computed inputs.
func ResetWeeklyDistribution(rec *types.WeeklyDistributionRecord) error {
	db, err := getServiceDB()
	if err != nil {
		return err
	}
	return db.Save(rec).Error
}

// SaveWeeklyRewards persists the per-staker reward records and their outbox
// transfers in one transaction and marks the week distributed.
func SaveWeeklyRewards(weekId string, rewards []*types.StakingRewardRecord, outbox []*types.TransferOutbox) error {
	db, err := getServiceDB()
	if err != nil {
		return err
	}
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for _, rec := range rewards {
		if err := tx.Create(rec).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, op := range outbox {
		if err := tx.Create(op).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Model(&types.WeeklyDistributionRecord{}).Where("week_id = ?", weekId).
		Update("status", types.DistributionStatusDistributed).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func GetRecentWeeklyDistributions(limit int) ([]*types.WeeklyDistributionRecord, error) {
	db, err := getServiceDB()
	if err != nil {
		return nil, err
	}
	var list []*types.WeeklyDistributionRecord
	err = db.Order("time desc").Limit(limit).Find(&list).Error
	return list, err
}

func GetDistributionsByStatus(status int) ([]*types.WeeklyDistributionRecord, error) {
	db, err := getServiceDB()
	if err != nil {
		return nil, err
	}
	var list []*types.WeeklyDistributionRecord
	err = db.Where("status = ?", status).Find(&list).Error
	return list, err
}

func GetStakingRewardsByWeek(weekId string) ([]*types.StakingRewardRecord, error) {
	db, err := getServiceDB()
	if err != nil {
		return nil, err
	}
	var list []*types.StakingRewardRecord
	err = db.Where("week_id = ?", weekId).Find(&list).Error
	return list, err
}

func GetUserStakingRewardHistory(account string, index int, pageSize int) ([]*types.StakingRewardRecord, error, int) {
	db, err := getServiceDB()
	if err != nil {
		return nil, err, types.StatusGetDbError
	}
	if index < 1 {
		index = types.DefaultPageIndex
	}
	if pageSize < 1 {
		pageSize = types.DefaultPageSize
	}
	var list []*types.StakingRewardRecord
	err = db.Where("account = ?", account).Order("time desc").
		Offset((index - 1) * pageSize).Limit(pageSize).Find(&list).Error
	if err != nil {
		return nil, err, types.StatusDbQueryError
	}
	return list, nil, types.StatusSuccess
}

//
// ---- curator rewards ----
//

func GetUserCurationRewardHistory(account string, index int, pageSize int) ([]*types.CuratorRewardRecord, error, int) {
	db, err := getServiceDB()
	if err != nil {
		return nil, err, types.StatusGetDbError
	}
	if index < 1 {
		index = types.DefaultPageIndex
	}
	if pageSize < 1 {
		pageSize = types.DefaultPageSize
	}
	var list []*types.CuratorRewardRecord
	err = db.Where("curator = ? OR author = ?", account, account).Order("processed_time desc").
		Offset((index - 1) * pageSize).Limit(pageSize).Find(&list).Error
	if err != nil {
		return nil, err, types.StatusDbQueryError
	}
	return list, nil, types.StatusSuccess
}

// GetProcessedVoteIds returns which of the given vote ids were already
// processed in an earlier round.
func GetProcessedVoteIds(ids []string) (map[string]bool, error) {
	processed := make(map[string]bool)
	if len(ids) == 0 {
		return processed, nil
	}
	db, err := getServiceDB()
	if err != nil {
		return nil, err
	}
	var list []*types.ProcessedVote
	if err := db.Where("vote_id in (?)", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, v := range list {
		processed[v.VoteId] = true
	}
	return processed, nil
}

// GetCuratorDailyUsageByDate loads the per-curator usage rows of one day.
func GetCuratorDailyUsageByDate(date string) ([]*types.CuratorDailyUsage, error) {
	db, err := getServiceDB()
	if err != nil {
		return nil, err
	}
	var list []*types.CuratorDailyUsage
	if err := db.Where("date = ?", date).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func GetCuratorUsage(curator string, date string) (*types.CuratorDailyUsage, error) {
	db, err := getServiceDB()
	if err != nil {
		return nil, err
	}
	var usage types.CuratorDailyUsage
	err = db.Where("curator = ? AND date = ?", curator, date).Take(&usage).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

func GetCheckpoint(name string) (uint64, error) {
	db, err := getServiceDB()
	if err != nil {
		return 0, err
	}
	var cp types.SyncCheckpoint
	err = db.Where("name = ?", name).Take(&cp).Error
	if gorm.IsRecordNotFoundError(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cp.BlockNum, nil
}

// SaveCuratorResults persists one vote-processing round atomically: reward
// records, outbox transfers, the processed-vote set, the updated daily usage
// counters and the block checkpoint commit or roll back together, so a crash
// can never leave a vote paid but unrecorded.
func SaveCuratorResults(rewards []*types.CuratorRewardRecord, outbox []*types.TransferOutbox,
	processed []*types.ProcessedVote, usage []*types.CuratorDailyUsage, checkpoint *types.SyncCheckpoint) error {
	db, err := getServiceDB()
	if err != nil {
		return err
	}
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for _, rec := range rewards {
		if err := tx.Create(rec).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, op := range outbox {
		if err := tx.Create(op).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, v := range processed {
		if err := tx.Create(v).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, u := range usage {
		var existing types.CuratorDailyUsage
		err := tx.Where("id = ?", u.Id).Take(&existing).Error
		if gorm.IsRecordNotFoundError(err) {
			err = tx.Create(u).Error
		} else if err == nil {
			err = tx.Model(&types.CuratorDailyUsage{}).Where("id = ?", u.Id).
				Updates(map[string]interface{}{
					"votes_used":     u.VotesUsed,
					"total_rewarded": u.TotalRewarded,
					"time":           u.Time,
				}).Error
		}
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	if checkpoint != nil {
		var existing types.SyncCheckpoint
		err := tx.Where("name = ?", checkpoint.Name).Take(&existing).Error
		if gorm.IsRecordNotFoundError(err) {
			err = tx.Create(checkpoint).Error
		} else if err == nil {
			err = tx.Model(&types.SyncCheckpoint{}).Where("name = ?", checkpoint.Name).
				Updates(map[string]interface{}{"block_num": checkpoint.BlockNum, "time": checkpoint.Time}).Error
		}
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

//
// ---- stake snapshots ----
//

func BatchInsertStakeSnapshots(list []*types.StakeSnapshot) error {
	if len(list) == 0 {
		return nil
	}
	db, err := getServiceDB()
	if err != nil {
		return err
	}
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for _, snap := range list {
		if err := tx.Create(snap).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

// GetLatestStakeSnapshot returns all rows of the most recent snapshot round.
func GetLatestStakeSnapshot() ([]*types.StakeSnapshot, error) {
	db, err := getServiceDB()
	if err != nil {
		return nil, err
	}
	var latest types.StakeSnapshot
	err = db.Order("time desc").Take(&latest).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []*types.StakeSnapshot
	err = db.Where("time = ?", latest.Time).Find(&list).Error
	return list, err
}

//
// ---- observe node reads ----
//

// GetStakedBalances fetches the current staker snapshot source: every account
// holding a non-zero stake of the token.
func GetStakedBalances(symbol string) ([]*types.TokenBalance, error) {
	logger := logs.GetLogger()
	db, err := getObserveNodeDb()
	if err != nil {
		logger.Errorf("GetStakedBalances: fail to get observe node db, the error is %v", err)
		return nil, err
	}
	var list []*types.TokenBalance
	err = db.Where("symbol = ? AND stake > 0", symbol).Find(&list).Error
	if err != nil {
		logger.Errorf("GetStakedBalances: fail to get staked balances, the error is %v", err)
		return nil, err
	}
	return list, nil
}

// GetAccountBalance returns the liquid balance of one account, used for the
// rewards-account solvency pre-flight.
func GetAccountBalance(account string, symbol string) (decimal.Decimal, error) {
	logger := logs.GetLogger()
	db, err := getObserveNodeDb()
	if err != nil {
		logger.Errorf("GetAccountBalance: fail to get observe node db, the error is %v", err)
		return decimal.Zero, err
	}
	var balance types.TokenBalance
	err = db.Where("account = ? AND symbol = ?", account, symbol).Take(&balance).Error
	if gorm.IsRecordNotFoundError(err) {
		return decimal.Zero, nil
	}
	if err != nil {
		logger.Errorf("GetAccountBalance: fail to get balance of %v, the error is %v", account, err)
		return decimal.Zero, err
	}
	value, err := decimal.NewFromString(balance.Balance)
	if err != nil {
		logger.Errorf("GetAccountBalance: fail to convert balance %v of %v, the error is %v", balance.Balance, account, err)
		return decimal.Zero, err
	}
	return value, nil
}

// GetVoteEventsSince fetches new vote events above the checkpoint block.
func GetVoteEventsSince(blockNum uint64, limit int) ([]*types.VoteEvent, error) {
	logger := logs.GetLogger()
	db, err := getObserveNodeDb()
	if err != nil {
		logger.Errorf("GetVoteEventsSince: fail to get observe node db, the error is %v", err)
		return nil, err
	}
	var list []*types.VoteEvent
	err = db.Where("block_num > ?", blockNum).Order("block_num asc, id asc").Limit(limit).Find(&list).Error
	if err != nil {
		logger.Errorf("GetVoteEventsSince: fail to get vote events, the error is %v", err)
		return nil, err
	}
	return list, nil
}

// GetVoteEventsByBlock fetches every vote event of one block, for the rare
// block whose votes do not fit in a single batch.
func GetVoteEventsByBlock(blockNum uint64) ([]*types.VoteEvent, error) {
	logger := logs.GetLogger()
	db, err := getObserveNodeDb()
	if err != nil {
		logger.Errorf("GetVoteEventsByBlock: fail to get observe node db, the error is %v", err)
		return nil, err
	}
	var list []*types.VoteEvent
	err = db.Where("block_num = ?", blockNum).Order("id asc").Find(&list).Error
	if err != nil {
		logger.Errorf("GetVoteEventsByBlock: fail to get vote events of block %v, the error is %v", blockNum, err)
		return nil, err
	}
	return list, nil
}
