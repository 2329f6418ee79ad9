// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bascanada/buildlog/pkg/applog"
	"github.com/bascanada/buildlog/pkg/config"

	_ "github.com/bascanada/buildlog/pkg/source/cloudwatch"
	_ "github.com/bascanada/buildlog/pkg/source/docker"
	_ "github.com/bascanada/buildlog/pkg/source/k8s"
	_ "github.com/bascanada/buildlog/pkg/source/local"
	_ "github.com/bascanada/buildlog/pkg/source/ssh"
)

var (
	configPath string
	logOpts    applog.Options
)

var rootCmd = &cobra.Command{
	Use:    "buildlog",
	Short:  "Analyze Gentoo emerge.log build history, duration stats and ETAs",
	Long:   ``,
	PreRun: onCommandStart,
	Run: func(cmd *cobra.Command, args []string) {
		home, err := os.UserHomeDir()
		if err == nil {
			defaultPath := filepath.Join(home, config.DefaultConfigDir, config.DefaultConfigFile)
			if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
				fmt.Println("Welcome to buildlog!")
				fmt.Println("\nNo configuration found.")
				fmt.Println("   Run 'buildlog configure' to get started with an interactive setup wizard.")
				fmt.Println("\nOr use 'buildlog --help' to see all available commands.")
				return
			}
		}
		cmd.Help()
	},
}

// Execute runs the root command; called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func onCommandStart(cmd *cobra.Command, args []string) {
	if err := applog.Configure(logOpts); err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $HOME/.buildlog/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logOpts.Path, "logging-path", "", "file to write application logs to")
	rootCmd.PersistentFlags().StringVar(&logOpts.Level, "logging-level", "", "logging level: TRACE, DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().BoolVar(&logOpts.Stdout, "logging-stdout", false, "also write application logs to stdout")

	_ = rootCmd.RegisterFlagCompletionFunc("logging-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, cobra.ShellCompDirectiveNoFileComp
	})
}
