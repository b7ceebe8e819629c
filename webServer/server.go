package webServer

import (
	"net/http"

	"medals_reward/config"
	"medals_reward/logs"
)

var server *http.Server

func StartServer() error {
	logger := logs.GetLogger()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/staking/history", getUserStakingRewardHistory)
	mux.HandleFunc("/api/curation/history", getUserCurationRewardHistory)
	mux.HandleFunc("/api/distribution/list", getDistributionList)
	mux.HandleFunc("/api/curator/usage", getCuratorUsage)

	server = &http.Server{
		Addr:    ":" + config.GetHttpPort(),
		Handler: mux,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("StartServer: http server stopped, the error is %v", err)
		}
	}()
	logger.Infof("Start http server on port %v", config.GetHttpPort())
	return nil
}

func StopServer() {
	if server != nil {
		if err := server.Close(); err != nil {
			logs.GetLogger().Errorf("StopServer: fail to close http server, the error is %v", err)
		}
	}
}
