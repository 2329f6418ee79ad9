// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bascanada/buildlog/pkg/mcptools"
	"github.com/bascanada/buildlog/pkg/tzoffset"
)

var mcpOpts struct {
	window int
}

var mcpCmd = &cobra.Command{
	Use:    "mcp",
	Short:  "Serve history/predict/current-builds tools over MCP on stdio",
	PreRun: onCommandStart,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		offset := tzoffset.Get(false, nil)
		s := mcptools.NewServer(mcptools.Deps{Config: cfg, Offset: offset, Window: mcpOpts.window})
		if err := server.ServeStdio(s); err != nil {
			return fmt.Errorf("serving mcp: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().IntVar(&mcpOpts.window, "window", 0, "tail window of past durations to average over (default: config's defaultWindow)")
}
