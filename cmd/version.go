package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mqttwire",
	Long:  `Print the version number of mqttwire`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("mqttwire version v0.1.0")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
