// Command autosync commits and pushes pending changes in
// a set of configured git repositories. It is designed
// for unattended scheduled execution: the install
// subcommand adds a crontab entry running it every five
// minutes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/byte4ever/autosync/config"
	"github.com/byte4ever/autosync/sync"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// newRootCmd builds the root command: load the
// configuration and run one sync pass over every
// configured repository.
func newRootCmd() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "autosync",
		Short: "Commit and push pending changes in configured repositories",
		Long: `Autosync iterates over the repositories listed in the
configuration file. For each one it detects uncommitted
changes (honoring exclude patterns), stages them, commits
with a templated message, and pushes to the configured
remote and branch. Repositories are processed one at a
time; one repository's failure never stops the rest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(
			cmd *cobra.Command, _ []string,
		) error {
			return runSync(
				cmd.Context(), configPath, dryRun,
			)
		},
	}

	cmd.Flags().StringVarP(
		&configPath, "config", "c", "",
		"configuration file (default: config.json "+
			"next to the binary)",
	)
	cmd.Flags().BoolVar(
		&dryRun, "dry-run", false,
		"log intended actions without running any "+
			"mutating git command",
	)

	cmd.AddCommand(newInstallCmd())

	return cmd
}

// runSync loads the configuration and processes every
// repository. Returns an error (non-zero exit) when the
// configuration is invalid or any repository failed; all
// repositories are still attempted.
func runSync(
	ctx context.Context,
	configPath string,
	dryRun bool,
) error {
	const errCtx = "running sync"

	path, err := resolveConfigPath(configPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	sc := sync.New(cfg.Global, sync.Options{
		DryRun: dryRun,
	})

	report := sc.Run(ctx, cfg.Repos)

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf(
			"%s: %d of %d repositories failed",
			errCtx, failed, len(report.Results),
		)
	}

	return nil
}

// resolveConfigPath returns the explicit override, or the
// default config.json colocated with the binary.
func resolveConfigPath(
	override string,
) (string, error) {
	const errCtx = "resolving config path"

	if override != "" {
		return override, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return filepath.Join(
		filepath.Dir(exe), "config.json",
	), nil
}
