package types

const (
	// weekly distribution record lifecycle
	DistributionStatusProcessing        = 0 // record created, transfers not yet enqueued
	DistributionStatusDistributed       = 1 // reward records and outbox rows persisted
	DistributionStatusInsufficientFunds = 2 // solvency pre-flight failed, nothing enqueued
	DistributionStatusFailed            = 3 // persistence failed after the record was created
	DistributionStatusAudited           = 4 // conservation audit passed
	DistributionStatusAuditFailed       = 5

	// transfer outbox lifecycle; the external broadcaster owns later states
	TransferStatusPending   = 0
	TransferStatusSubmitted = 1
	TransferStatusConfirmed = 2
	TransferStatusFailed    = 3

	CheckpointCuratorVotes = "curator_votes"
)

// WeeklyDistributionRecord is the idempotency anchor of a weekly staking run:
// WeekId is the primary key, so inserting it twice for the same ISO week fails
// and the second run backs off.
type WeeklyDistributionRecord struct {
	WeekId              string `gorm:"primary_key"`
	PoolAmount          string `gorm:"not null"`
	TotalStaked         string `gorm:"not null"`
	StakerCount         int    `gorm:"not null"`
	EligibleStakerCount int    `gorm:"not null"`
	AnnualRate          string `gorm:"not null"`
	Status              int    `gorm:"not null"`
	Time                int64  `gorm:"not null"`
}

type StakingRewardRecord struct {
	Id         string `gorm:"primary_key"`
	WeekId     string `gorm:"not null;index"`
	Account    string `gorm:"not null;index"`
	Amount     string `gorm:"not null"`
	Percentage string `gorm:"not null"`
	Time       int64  `gorm:"not null"`
}

type CuratorRewardRecord struct {
	Id            string `gorm:"primary_key"`
	VoteId        string `gorm:"not null;unique_index"`
	Curator       string `gorm:"not null;index"`
	Author        string `gorm:"not null;index"`
	Permlink      string `gorm:"not null"`
	Amount        string `gorm:"not null"`
	VoteTime      int64  `gorm:"not null"`
	ProcessedTime int64  `gorm:"not null"`
	TransactionId string `gorm:"not null"`
}

// ProcessedVote is the replay-protection set: one row per vote unique id ever
// seen, rewarded or skipped.
type ProcessedVote struct {
	VoteId  string `gorm:"primary_key"`
	Curator string `gorm:"not null"`
	Time    int64  `gorm:"not null"`
}

type CuratorDailyUsage struct {
	Id            string `gorm:"primary_key"` // "{curator}_{date}"
	Curator       string `gorm:"not null;index"`
	Date          string `gorm:"not null"`
	VotesUsed     int    `gorm:"not null"`
	TotalRewarded string `gorm:"not null"`
	Time          int64  `gorm:"not null"`
}

// TransferOutbox holds finished transfer instructions for the external
// broadcaster; this service never signs or submits them.
type TransferOutbox struct {
	Id             string `gorm:"primary_key"`
	RefId          string `gorm:"not null;index"`
	ContractName   string `gorm:"not null"`
	ContractAction string `gorm:"not null"`
	Symbol         string `gorm:"not null"`
	ToAccount      string `gorm:"not null"`
	Quantity       string `gorm:"not null"`
	Memo           string `gorm:"not null"`
	Status         int    `gorm:"not null;index"`
	Time           int64  `gorm:"not null"`
}

type StakeSnapshot struct {
	SnapshotId string `gorm:"primary_key"`
	Account    string `gorm:"not null"`
	Staked     string `gorm:"not null"`
	Time       int64  `gorm:"not null;index"`
}

type SyncCheckpoint struct {
	Name     string `gorm:"primary_key"`
	BlockNum uint64 `gorm:"not null"`
	Time     int64  `gorm:"not null"`
}

// ---- observe node tables (read-only, written by the chain indexer) ----

type TokenBalance struct {
	Account string
	Symbol  string
	Balance string
	Stake   string
}

func (TokenBalance) TableName() string {
	return "token_balances"
}

type VoteEvent struct {
	Id       uint64
	Voter    string
	Author   string
	Permlink string
	Weight   int64
	BlockNum uint64
	TrxId    string
	Time     int64
}

func (VoteEvent) TableName() string {
	return "vote_events"
}

type ChainStatus struct {
	HeadBlockNumber uint64
	Time            int64
}

func (ChainStatus) TableName() string {
	return "chain_status"
}
