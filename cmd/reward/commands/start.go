package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"medals_reward/check"
	"medals_reward/config"
	"medals_reward/db"
	"medals_reward/distribute"
	"medals_reward/logs"
	"medals_reward/snapshot"
	"medals_reward/webServer"
)

var (
	svEnv   string
	cfgPath string
)

var StartCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start medals reward service",
		Long:  "start medals reward service, if has arg 'env', will use it for service env",
		Run:   startService,
	}
	cmd.Flags().StringVarP(&svEnv, "env", "e", "pro", "service env (default is pro)")
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "./config.json", "config file path")
	return cmd
}

func startService(cmd *cobra.Command, args []string) {
	fmt.Println("start medals reward service")

	err := config.SetConfigEnv(svEnv)
	if err != nil {
		fmt.Printf("startService: fail to set env, the error is %v \n", err)
		os.Exit(1)
	}
	//load config json file
	err = config.LoadRewardConfig(cfgPath)
	if err != nil {
		fmt.Println("startService: fail to load config file")
		os.Exit(1)
	}

	logger, err := logs.StartLogService()
	if err != nil {
		fmt.Println("startService: fail to start log service")
		os.Exit(1)
	}
	logger.Debugln("start medals reward service")

	//start db service
	err = db.StartDbService()
	if err != nil {
		logger.Error("startService: fail to start db service")
		os.Exit(1)
	}
	defer db.CloseDbService()
	logger.Debugln("Successfully start db service")

	//start stake snapshot service
	snapshotSv, err := snapshot.NewStakeSyncService()
	if err != nil {
		logger.Errorf("startService: fail to create stake snapshot service, the error is %v", err)
		os.Exit(1)
	}
	snapshotSv.StartSyncService()

	//start weekly staking reward distribute service
	err = distribute.StartDistributeService()
	if err != nil {
		logger.Errorf("startService: fail to start distribute service, the error is %v", err)
		os.Exit(1)
	}

	//start curator vote processing service
	voteSv := distribute.NewCuratorVoteService(clockwork.NewRealClock())
	voteSv.StartVoteService()

	checkSv := check.NewDistributionAuditChecker()
	checkSv.StartCheck()
	defer func() {
		snapshotSv.StopSyncService()
		distribute.StopDistributeService()
		voteSv.StopVoteService()
		checkSv.StopCheck()
	}()

	//start http service
	err = webServer.StartServer()
	if err != nil {
		os.Exit(1)
	}
	defer webServer.StopServer()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	for {
		s := <-c
		switch s {
		case syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT:
			return
		case syscall.SIGHUP:
		default:
			return
		}
	}
}
