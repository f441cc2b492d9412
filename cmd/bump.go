package cmd

import (
	"fmt"
	"time"

	"github.com/oakmont-embedded/gh-fwbump/internal/fwver"
	"github.com/oakmont-embedded/gh-fwbump/internal/header"
	"github.com/spf13/cobra"
)

// nowFunc is swapped out in tests to pin the datecode.
var nowFunc = time.Now

// bumpOptions holds the command-line options for bump
type bumpOptions struct {
	major   int
	minor   int
	verbose bool
}

func newBumpCommand() *cobra.Command {
	opts := &bumpOptions{}

	cmd := &cobra.Command{
		Use:   "bump <file>",
		Short: "Bump the version defines in a header file",
		Long: `Bump the firmware version in the given header file.

The header must define FW_MAJOR_VERSION, FW_MINOR_VERSION,
FW_VERSION_VERSION and FW_REVISION_VERSION, each on its own line. The
datecode is set from today's date; bumping again on the same day
increments the revision instead. --major and --minor override those
components for this bump.

The new version is printed on stdout as major.minor.datecode.revision.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBump(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.major, "major", 0, "Set the major version for this bump")
	cmd.Flags().IntVar(&opts.minor, "minor", 0, "Set the minor version for this bump")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Print a success message to stderr")

	return cmd
}

func runBump(cmd *cobra.Command, path string, opts *bumpOptions) error {
	rule := fwver.Rule{}
	if cmd.Flags().Changed("major") {
		rule.PinMajor = fwver.Pin(opts.major)
	}
	if cmd.Flags().Changed("minor") {
		rule.PinMinor = fwver.Pin(opts.minor)
	}

	now := nowFunc()
	next, err := header.Bump(path, func(cur fwver.Version) fwver.Version {
		return cur.Bump(now, rule)
	})
	if err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintln(cmd.ErrOrStderr(), "Version and revision updated successfully.")
	}
	fmt.Fprintln(cmd.OutOrStdout(), next.String())
	return nil
}
