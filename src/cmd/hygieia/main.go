// Package main provides the hygieia CLI. The CI host calls `started` and
// `completed` around each build; the remaining commands help set up and
// debug a reporter installation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hygieia-reporter/src/config"
	"hygieia-reporter/src/logger"
	"hygieia-reporter/src/provider"
)

var (
	cfgFile   string
	appConfig *config.Config
	log       logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hygieia",
	Short: "Report CI build lifecycle events to a Hygieia collector",
	Long: `hygieia publishes build records, artifacts, test results, static
analysis and deploy data to a Hygieia collector API.

Configuration is read from hygieia.yaml (in . or ./configs) and HYGIEIA_*
environment variables. A .env file in the working directory is loaded first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appConfig, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		log = logger.NewWriterLogger(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: hygieia.yaml in . or ./configs)")

	rootCmd.AddCommand(startedCmd, completedCmd)
	rootCmd.AddCommand(pingCmd, classifyCmd, artifactsCmd, itemsCmd, recordsCmd)
	rootCmd.AddCommand(collectorCmd, mcpCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, provider.WrapError(err))
		os.Exit(1)
	}
}
