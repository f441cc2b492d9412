package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/spf13/cobra"

	"github.com/oakmont-embedded/gh-fwbump/internal/config"
	"github.com/oakmont-embedded/gh-fwbump/internal/defaults"
)

// initOptions holds the command-line options for init
type initOptions struct {
	header string
	remote string
	force  bool
}

func newInitCommand() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .gh-fwbump.yml for the current repository",
		Long: `Write a .gh-fwbump.yml configuration file in the current directory.

The file starts from the built-in defaults (configtest.h, the
github-actions[bot] committer, and the master/main + develop branch
policies) and can be edited afterwards. An existing file is only
overwritten with --force.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.header, "header", "", "Header file tracked by the version bump")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "Remote pushed to after a bump")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	path := filepath.Join(cwd, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists - use --force to overwrite", config.ConfigFileName)
	}

	cfg := defaults.MustLoad()
	cfg.Version = "1"
	if opts.header != "" {
		cfg.Header = opts.header
	}
	if opts.remote != "" {
		cfg.Remote = opts.remote
	}

	if err := cfg.Save(path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if repo, err := repository.Current(); err == nil {
		fmt.Fprintf(out, "Initialized %s for %s/%s\n", config.ConfigFileName, repo.Owner, repo.Name)
	} else {
		fmt.Fprintf(out, "Initialized %s\n", config.ConfigFileName)
	}
	fmt.Fprintf(out, "Tracking header: %s\n", cfg.Header)
	return nil
}
