package commands

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"medals_reward/config"
	"medals_reward/db"
	"medals_reward/distribute"
	"medals_reward/logs"
)

var (
	runEnv     string
	runCfgPath string
)

// RunWeekCmd triggers a single weekly distribution by hand, for recovery after
// a missed cron run or a week left in a failed or insufficient-funds state.
// The week-id record keeps a manual run from double-paying a week the
// scheduler already handled.
var RunWeekCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-week",
		Short: "run one weekly staking distribution manually",
		Run:   runWeek,
	}
	cmd.Flags().StringVarP(&runEnv, "env", "e", "pro", "service env (default is pro)")
	cmd.Flags().StringVarP(&runCfgPath, "config", "c", "./config.json", "config file path")
	return cmd
}

func runWeek(cmd *cobra.Command, args []string) {
	err := config.SetConfigEnv(runEnv)
	if err != nil {
		fmt.Printf("runWeek: fail to set env, the error is %v \n", err)
		os.Exit(1)
	}
	err = config.LoadRewardConfig(runCfgPath)
	if err != nil {
		fmt.Println("runWeek: fail to load config file")
		os.Exit(1)
	}
	logger, err := logs.StartLogService()
	if err != nil {
		fmt.Println("runWeek: fail to start log service")
		os.Exit(1)
	}
	err = db.StartDbService()
	if err != nil {
		logger.Error("runWeek: fail to start db service")
		os.Exit(1)
	}
	defer db.CloseDbService()

	sv := distribute.NewDistributeService(clockwork.NewRealClock())
	if err := sv.DistributeWeek(); err != nil {
		logger.Errorf("runWeek: distribution failed, the error is %v", err)
		os.Exit(1)
	}
	logger.Infoln("runWeek: distribution finished")
}
