package types

const (
	DefaultPageSize  = 10
	DefaultPageIndex = 1

	StatusSuccess         = 200
	StatusWriteJsonError  = 600
	StatusParamParseError = 601
	StatusLackParamError  = 602
	StatusGetDbError      = 603
	StatusDbQueryError    = 604
	StatusNotFoundError   = 605
	StatusGetUsageError   = 606
	StatusConvertError    = 607
)

type BaseResponse struct {
	Status int
	Msg    string
}

type UserStakingReward struct {
	Account    string
	WeekId     string
	Amount     string
	Percentage string
	Time       string
}

type UserStakingRewardResponse struct {
	BaseResponse
	List []*UserStakingReward
}

type UserCurationReward struct {
	Curator       string
	Author        string
	Permlink      string
	Amount        string
	VoteTime      string
	ProcessedTime string
}

type UserCurationRewardResponse struct {
	BaseResponse
	List []*UserCurationReward
}

type DistributionInfo struct {
	WeekId              string
	PoolAmount          string
	TotalStaked         string
	StakerCount         int
	EligibleStakerCount int
	AnnualRate          string
	Status              int
	Time                string
}

type DistributionInfoResponse struct {
	BaseResponse
	List []*DistributionInfo
}

type CuratorUsageInfo struct {
	Curator        string
	Date           string
	VotesUsed      int
	VotesRemaining int
	TotalRewarded  string
}

type CuratorUsageResponse struct {
	BaseResponse
	Info *CuratorUsageInfo
}
