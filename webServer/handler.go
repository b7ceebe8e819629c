package webServer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"medals_reward/config"
	"medals_reward/db"
	"medals_reward/logs"
	"medals_reward/types"
	"medals_reward/utils"
)

const (
	pageSizeKey    = "pageSize"
	pageIndexKey   = "index"
	accountNameKey = "account"
	curatorNameKey = "curator"
	dateKey        = "date"
	paramWeeksKey  = "weeks"

	defaultWeeksNum = 4 // default get distribution history of the last 4 weeks
	maxWeeksNum     = 52
)

//
// get a list of user's weekly staking rewards
//
func getUserStakingRewardHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	res := types.UserStakingRewardResponse{
		List: make([]*types.UserStakingReward, 0),
	}

	acctName, err, code := parseParameterFromRequest(r, accountNameKey)
	if err != nil {
		res.Status = code
		res.Msg = "params account error"
		writeResponse(w, res)
		return
	}
	index, pageSize, err := parsePaging(r)
	if err != nil {
		res.Status = types.StatusParamParseError
		res.Msg = err.Error()
		writeResponse(w, res)
		return
	}

	list, err, code := db.GetUserStakingRewardHistory(acctName, index, pageSize)
	if err != nil {
		res.Status = code
		res.Msg = err.Error()
	} else {
		res.Status = types.StatusSuccess
		for _, rec := range list {
			res.List = append(res.List, &types.UserStakingReward{
				Account:    rec.Account,
				WeekId:     rec.WeekId,
				Amount:     rec.Amount,
				Percentage: rec.Percentage,
				Time:       utils.ConvertTimeToStamp(time.Unix(rec.Time, 0).UTC()),
			})
		}
	}
	writeResponse(w, res)
}

//
// get a list of curation rewards the account earned or authored
//
func getUserCurationRewardHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	res := types.UserCurationRewardResponse{
		List: make([]*types.UserCurationReward, 0),
	}

	acctName, err, code := parseParameterFromRequest(r, accountNameKey)
	if err != nil {
		res.Status = code
		res.Msg = "params account error"
		writeResponse(w, res)
		return
	}
	index, pageSize, err := parsePaging(r)
	if err != nil {
		res.Status = types.StatusParamParseError
		res.Msg = err.Error()
		writeResponse(w, res)
		return
	}

	list, err, code := db.GetUserCurationRewardHistory(acctName, index, pageSize)
	if err != nil {
		res.Status = code
		res.Msg = err.Error()
	} else {
		res.Status = types.StatusSuccess
		for _, rec := range list {
			res.List = append(res.List, &types.UserCurationReward{
				Curator:       rec.Curator,
				Author:        rec.Author,
				Permlink:      rec.Permlink,
				Amount:        rec.Amount,
				VoteTime:      utils.ConvertTimeToStamp(time.Unix(rec.VoteTime, 0).UTC()),
				ProcessedTime: utils.ConvertTimeToStamp(time.Unix(rec.ProcessedTime, 0).UTC()),
			})
		}
	}
	writeResponse(w, res)
}

//
// get past weekly distribution records
//
func getDistributionList(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	logger := logs.GetLogger()
	res := &types.DistributionInfoResponse{
		List: make([]*types.DistributionInfo, 0),
	}

	weeks := defaultWeeksNum
	weeksStr, err, _ := parseParameterFromRequest(r, paramWeeksKey)
	if err == nil {
		n, err := strconv.Atoi(weeksStr)
		if err != nil {
			logger.Errorf("getDistributionList: fail to convert string %v to int", weeksStr)
			res.Status = types.StatusParamParseError
			writeResponse(w, res)
			return
		}
		weeks = clampWeeks(n)
	}

	list, err := db.GetRecentWeeklyDistributions(weeks)
	if err != nil {
		res.Status = types.StatusDbQueryError
		res.Msg = err.Error()
	} else {
		res.Status = types.StatusSuccess
		for _, rec := range list {
			res.List = append(res.List, &types.DistributionInfo{
				WeekId:              rec.WeekId,
				PoolAmount:          rec.PoolAmount,
				TotalStaked:         rec.TotalStaked,
				StakerCount:         rec.StakerCount,
				EligibleStakerCount: rec.EligibleStakerCount,
				AnnualRate:          rec.AnnualRate,
				Status:              rec.Status,
				Time:                utils.ConvertTimeToStamp(time.Unix(rec.Time, 0).UTC()),
			})
		}
	}
	writeResponse(w, res)
}

//
// get one curator's daily quota usage
//
func getCuratorUsage(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	res := &types.CuratorUsageResponse{}

	curator, err, code := parseParameterFromRequest(r, curatorNameKey)
	if err != nil {
		res.Status = code
		res.Msg = "params curator error"
		writeResponse(w, res)
		return
	}
	date, err, _ := parseParameterFromRequest(r, dateKey)
	if err != nil {
		date = time.Now().UTC().Format("2006-01-02")
	}

	usage, err := db.GetCuratorUsage(curator, date)
	if err != nil {
		res.Status = types.StatusGetUsageError
		res.Msg = err.Error()
		writeResponse(w, res)
		return
	}
	info := &types.CuratorUsageInfo{
		Curator:        curator,
		Date:           date,
		VotesRemaining: config.MaxVotesPerDay,
		TotalRewarded:  "0.000",
	}
	if usage != nil {
		info.VotesUsed = usage.VotesUsed
		info.TotalRewarded = usage.TotalRewarded
		info.VotesRemaining = config.MaxVotesPerDay - usage.VotesUsed
		if info.VotesRemaining < 0 {
			info.VotesRemaining = 0
		}
	}
	res.Status = types.StatusSuccess
	res.Info = info
	writeResponse(w, res)
}

// clampWeeks keeps the distribution-list window inside sane bounds; gorm
// treats a negative limit as no limit at all.
func clampWeeks(n int) int {
	if n < 1 {
		return defaultWeeksNum
	}
	if n > maxWeeksNum {
		return maxWeeksNum
	}
	return n
}

func writeResponse(w http.ResponseWriter, data interface{}) {
	js, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Fail to marshal json", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(js); err != nil {
		log := logs.GetLogger()
		log.Errorf("w.Write fail, json is %v, error is %v \n", string(js), err)
		http.Error(w, "Fail to write json", types.StatusWriteJsonError)
	}
}

func parsePaging(r *http.Request) (int, int, error) {
	index := types.DefaultPageIndex
	pIndexStr, err, _ := parseParameterFromRequest(r, pageIndexKey)
	if err == nil {
		pIndex, err := strconv.Atoi(pIndexStr)
		if err != nil {
			return 0, 0, errors.New("params index error")
		}
		index = pIndex
	}
	pageSize := types.DefaultPageSize
	pSizeStr, err, _ := parseParameterFromRequest(r, pageSizeKey)
	if err == nil {
		pSize, err := strconv.Atoi(pSizeStr)
		if err != nil {
			return 0, 0, errors.New("params pageSize error")
		}
		pageSize = pSize
	}
	return index, pageSize, nil
}

func parseParameterFromRequest(r *http.Request, parameter string) (string, error, int) {
	var (
		err     error
		errCode int
	)

	if r == nil {
		return "", errors.New("empty http request"), types.StatusParamParseError
	}
	reqMethod := r.Method
	//just handle POST and GET method
	if reqMethod == http.MethodPost || reqMethod == http.MethodGet {
		if reqMethod == http.MethodGet {
			queryForm, err := url.ParseQuery(r.URL.RawQuery)
			if err == nil && len(queryForm[parameter]) > 0 && utils.CheckIsNotEmptyStr(queryForm[parameter][0]) {
				return queryForm[parameter][0], err, http.StatusOK
			}
			return "", fmt.Errorf("lack parameter %v", parameter), types.StatusLackParamError
		}
		err = r.ParseForm()
		if err != nil {
			return "", err, types.StatusParamParseError
		}
		val := r.PostFormValue(parameter)
		if len(val) < 1 {
			return "", fmt.Errorf("lack parameter %v", parameter), types.StatusLackParamError
		}
		return val, nil, http.StatusOK
	}
	err = fmt.Errorf("not support %v method", reqMethod)
	errCode = http.StatusMethodNotAllowed
	return "", err, errCode
}
