package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"medals_reward/reward"
)

const (
	EnvDev  = "dev"
	EnvPro  = "pro"
	EnvTest = "test"
)

type ObserveDbInfo struct {
	ObserveDbDriver   string `json:"observeDbDriver"`
	ObserveDbUser     string `json:"observeDbUser"`
	ObserveDbPassword string `json:"observeDbPassword"`
	ObserveDbName     string `json:"observeDbName"`
	ObserveDbHost     string `json:"observeDbHost"`
	ObserveDbPort     string `json:"observeDbPort"`
}

type EnvConfig struct {
	HttpPort              string          `json:"httpPort"`
	DbDriver              string          `json:"dbDriver"`
	DbUser                string          `json:"dbUser"`
	DbPassword            string          `json:"dbPassword"`
	DbName                string          `json:"dbName"`
	DbHost                string          `json:"dbHost"`
	DbPort                string          `json:"dbPort"`
	ObserveDbList         []ObserveDbInfo `json:"observeDbList"`
	LogPath               string          `json:"logPath"`
	RewardsAccount        string          `json:"rewardsAccount"`
	FounderAccounts       []string        `json:"founderAccounts"`
	MinStakeAmount        string          `json:"minStakeAmount"`
	AnnualRewardRate      string          `json:"annualRewardRate"`
	CuratorList           []string        `json:"curatorList"`
	MaxCuratorVotesPerDay string          `json:"maxCuratorVotesPerDay"`
	LaunchTimestamp       string          `json:"launchTimestamp"`
	CuratorBaseReward     string          `json:"curatorBaseReward"`
	CuratorYear4Reward    string          `json:"curatorYear4Reward"`
	DistributeCronSpec    string          `json:"distributeCronSpec"`
	VoteSyncInterval      string          `json:"voteSyncInterval"`
	SnapshotInterval      string          `json:"snapshotInterval"`
	AuditCheckInterval    string          `json:"auditCheckInterval"`
	VoteBatchLimit        string          `json:"voteBatchLimit"`
}

type RewardConfig struct {
	Dev  EnvConfig `json:"dev"`
	Pro  EnvConfig `json:"pro"`
	Test EnvConfig `json:"test"`
}

type DbConfig struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     string
	DbName   string
}

var (
	rewardConfig *EnvConfig
	configOnce   sync.Once
	env          = EnvDev // default env is dev

	MinStake           decimal.Decimal
	AnnualRate         decimal.Decimal
	CuratorBaseReward  decimal.Decimal
	CuratorYear4Reward decimal.Decimal
	LaunchDate         time.Time
	MaxVotesPerDay     int
	VoteSyncInterval   int64
	SnapshotInterval   int64
	AuditCheckInterval int64
	VoteBatchLimit     int
	FounderAccounts    []string
	CuratorList        []string
)

// read config json file
func LoadRewardConfig(path string) error {
	if rewardConfig != nil {
		return nil
	}
	var config RewardConfig
	cfgJson, err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Printf("LoadRewardConfig: fail to read json file, the error is %v \n", err)
		return err
	}
	if err := json.Unmarshal(cfgJson, &config); err != nil {
		fmt.Printf("LoadRewardConfig: fail to Unmarshal json, the error is %v \n", err)
		return err
	}
	if IsDevEnv() {
		rewardConfig = &config.Dev
	} else if IsTestEnv() {
		rewardConfig = &config.Test
	} else if IsProEnv() {
		rewardConfig = &config.Pro
	} else {
		return errors.New("fail to get reward config of unKnown env")
	}

	MinStake, err = decimal.NewFromString(rewardConfig.MinStakeAmount)
	if err != nil {
		return fmt.Errorf("fail to convert MinStakeAmount:%v to decimal, the error is %v", rewardConfig.MinStakeAmount, err)
	}
	AnnualRate, err = decimal.NewFromString(rewardConfig.AnnualRewardRate)
	if err != nil {
		return fmt.Errorf("fail to convert AnnualRewardRate:%v to decimal, the error is %v", rewardConfig.AnnualRewardRate, err)
	}
	CuratorBaseReward, err = decimal.NewFromString(rewardConfig.CuratorBaseReward)
	if err != nil {
		return fmt.Errorf("fail to convert CuratorBaseReward:%v to decimal, the error is %v", rewardConfig.CuratorBaseReward, err)
	}
	CuratorYear4Reward, err = decimal.NewFromString(rewardConfig.CuratorYear4Reward)
	if err != nil {
		return fmt.Errorf("fail to convert CuratorYear4Reward:%v to decimal, the error is %v", rewardConfig.CuratorYear4Reward, err)
	}
	launchStamp, err := strconv.ParseInt(rewardConfig.LaunchTimestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("fail to convert LaunchTimestamp:%v to int64, the error is %v", rewardConfig.LaunchTimestamp, err)
	}
	LaunchDate = time.Unix(launchStamp, 0).UTC()
	MaxVotesPerDay, err = strconv.Atoi(rewardConfig.MaxCuratorVotesPerDay)
	if err != nil {
		return fmt.Errorf("fail to convert MaxCuratorVotesPerDay:%v to int, the error is %v", rewardConfig.MaxCuratorVotesPerDay, err)
	}
	VoteSyncInterval, err = strconv.ParseInt(rewardConfig.VoteSyncInterval, 10, 64)
	if err != nil {
		return fmt.Errorf("fail to convert VoteSyncInterval:%v to int64, the error is %v", rewardConfig.VoteSyncInterval, err)
	}
	SnapshotInterval, err = strconv.ParseInt(rewardConfig.SnapshotInterval, 10, 64)
	if err != nil {
		return fmt.Errorf("fail to convert SnapshotInterval:%v to int64, the error is %v", rewardConfig.SnapshotInterval, err)
	}
	AuditCheckInterval, err = strconv.ParseInt(rewardConfig.AuditCheckInterval, 10, 64)
	if err != nil {
		return fmt.Errorf("fail to convert AuditCheckInterval:%v to int64, the error is %v", rewardConfig.AuditCheckInterval, err)
	}
	VoteBatchLimit, err = strconv.Atoi(rewardConfig.VoteBatchLimit)
	if err != nil {
		return fmt.Errorf("fail to convert VoteBatchLimit:%v to int, the error is %v", rewardConfig.VoteBatchLimit, err)
	}
	FounderAccounts = rewardConfig.FounderAccounts
	CuratorList = rewardConfig.CuratorList

	if len(rewardConfig.RewardsAccount) < 1 {
		return errors.New("rewards account is invalid")
	}
	if len(rewardConfig.DistributeCronSpec) < 1 {
		return errors.New("distribute cron spec is invalid")
	}
	return nil
}

func SetConfigEnv(ev string) error {
	if ev != EnvPro && ev != EnvDev && ev != EnvTest {
		return fmt.Errorf("fail to set unknown environment %v", ev)
	}
	configOnce.Do(func() {
		env = ev
	})
	return nil
}

func IsDevEnv() bool {
	return env == EnvDev
}

func IsTestEnv() bool {
	return env == EnvTest
}

func IsProEnv() bool {
	return env == EnvPro
}

func GetHttpPort() string {
	return rewardConfig.HttpPort
}

// get log output path
func GetLogOutputPath() string {
	if rewardConfig != nil {
		return rewardConfig.LogPath
	}
	return ""
}

// get observe node database config list
func GetObserveNodeDbConfigList() ([]*DbConfig, error) {
	var list []*DbConfig
	if rewardConfig == nil {
		return nil, errors.New("can't get observe db config from empty reward config")
	}
	for _, cf := range rewardConfig.ObserveDbList {
		info := &DbConfig{}
		info.Driver = cf.ObserveDbDriver
		info.User = cf.ObserveDbUser
		info.Password = cf.ObserveDbPassword
		info.Port = cf.ObserveDbPort
		info.Host = cf.ObserveDbHost
		info.DbName = cf.ObserveDbName
		list = append(list, info)
	}
	return list, nil
}

// get local reward service db config
func GetRewardDbConfig() (*DbConfig, error) {
	if rewardConfig == nil {
		return nil, errors.New("can't get service db config from empty reward config")
	}
	config := &DbConfig{}
	config.Driver = rewardConfig.DbDriver
	config.User = rewardConfig.DbUser
	config.Password = rewardConfig.DbPassword
	config.Port = rewardConfig.DbPort
	config.Host = rewardConfig.DbHost
	config.DbName = rewardConfig.DbName
	return config, nil
}

// get account that funds reward transfers
func GetRewardsAccount() string {
	return rewardConfig.RewardsAccount
}

func GetDistributeCronSpec() string {
	return rewardConfig.DistributeCronSpec
}

// GetStakingConfig builds the injectable calculator config from the loaded
// file config, so the reward package never reads ambient state itself.
func GetStakingConfig() reward.StakingConfig {
	return reward.StakingConfig{
		AnnualRate:       AnnualRate,
		MinStake:         MinStake,
		ExcludedAccounts: FounderAccounts,
	}
}

func GetCuratorConfig() reward.CuratorConfig {
	return reward.CuratorConfig{
		Curators:       CuratorList,
		MaxVotesPerDay: MaxVotesPerDay,
		LaunchDate:     LaunchDate,
		BaseReward:     CuratorBaseReward,
		Year4Reward:    CuratorYear4Reward,
	}
}
