package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mqttwire/common"
)

const (
	logDirVarName  = "log-dir"
	verboseVarName = "verbose"
	maxAgeVarName  = "max-age"
)

var rootCmd = &cobra.Command{
	Use:   "mqttwire",
	Short: "mqttwire replays captured MQTT v5 frames through the protocol observer core",
	Long:  `Parses and stitches MQTT v5 control packets from a fixture file, without any live capture.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

var (
	logDir   string
	verbose  bool
	maxAgeMs int64
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logDir, logDirVarName, "", "directory to write rotating log files to")
	rootCmd.PersistentFlags().BoolVarP(&verbose, verboseVarName, "v", false, "print verbose log")
	rootCmd.PersistentFlags().Int64Var(&maxAgeMs, maxAgeVarName, 0, "drop request frames older than this many milliseconds before stitching (0 disables aging)")
	viper.BindPFlags(rootCmd.PersistentFlags())

	cobra.OnInitialize(initLog)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
	}
}

func initLog() {
	common.SetVerbose(viper.GetBool(verboseVarName))

	dir := viper.GetString(logDirVarName)
	if dir != "" {
		common.EnableFileLogging(dir)
	} else {
		common.SetConsoleOutput(true)
	}
}
