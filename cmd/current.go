package cmd

import (
	"fmt"
	"os"

	"github.com/oakmont-embedded/gh-fwbump/internal/config"
	"github.com/oakmont-embedded/gh-fwbump/internal/defaults"
	"github.com/oakmont-embedded/gh-fwbump/internal/header"
	"github.com/spf13/cobra"
)

func newCurrentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "current [file]",
		Short: "Print the version currently in the header",
		Long: `Print the firmware version stored in the header file.

Without an argument, the header path comes from .gh-fwbump.yml (or the
built-in default, configtest.h).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runCurrent(cmd, path)
		},
	}

	return cmd
}

func runCurrent(cmd *cobra.Command, path string) error {
	if path == "" {
		cfg := defaults.MustLoad()
		cwd, err := os.Getwd()
		if err == nil {
			if fileCfg, loadErr := config.LoadFromDirectory(cwd); loadErr == nil {
				cfg = cfg.Overlay(fileCfg)
			}
		}
		path = cfg.Header
	}

	v, err := header.Read(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.String())
	return nil
}
