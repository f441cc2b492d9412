package cmd

import (
	pkgversion "github.com/oakmont-embedded/gh-fwbump/internal/version"
	"github.com/spf13/cobra"
)

// version is set by ldflags during release builds.
// When empty (default), falls back to the source constant in internal/version.
var version = ""

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.Version
}

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gh fwbump",
		Short: "Bump the firmware version header on merged pull requests",
		Long: `gh fwbump keeps the firmware version header in sync with merges.

The version scheme is major.minor.datecode.revision, where the datecode
encodes the build date (two-digit year + day of year) and the revision
counts bumps within the same day. When a pull request merges, the base
branch selects the bump rule: merges into master/main keep the minor
version, merges into develop reset it to 0.

Run 'gh fwbump merge' from a pull_request or workflow_dispatch job, or
'gh fwbump bump <file>' to bump a header directly.`,
		Version: getVersion(),
	}

	cmd.AddCommand(newBumpCommand())
	cmd.AddCommand(newMergeCommand())
	cmd.AddCommand(newCurrentCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func Execute() error {
	return NewRootCommand().Execute()
}
