package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/byte4ever/autosync/cron"
)

// newInstallCmd builds the install subcommand, which
// idempotently adds the scheduled crontab entry.
func newInstallCmd() *cobra.Command {
	var (
		schedule   string
		logPath    string
		binary     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the scheduled crontab entry",
		Long: `Install adds one line to the invoking user's crontab,
running autosync at the configured interval with output
redirected to a log file. The line carries a marker
comment; running install again when the marker is already
present is a no-op reporting the existing entry.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(
			*cobra.Command, []string,
		) error {
			return runInstall(
				schedule, logPath,
				binary, configPath,
			)
		},
	}

	cmd.Flags().StringVar(
		&schedule, "schedule", cron.DefaultSchedule,
		"cron schedule for the entry",
	)
	cmd.Flags().StringVar(
		&logPath, "log", "",
		"log file (default: autosync.log next to "+
			"the binary)",
	)
	cmd.Flags().StringVar(
		&binary, "binary", "",
		"binary to schedule (default: this "+
			"executable)",
	)
	cmd.Flags().StringVarP(
		&configPath, "config", "c", "",
		"configuration file passed to the scheduled "+
			"run (default: config.json next to the "+
			"binary)",
	)

	return cmd
}

// runInstall resolves defaults and installs the entry.
func runInstall(
	schedule string,
	logPath string,
	binary string,
	configPath string,
) error {
	const errCtx = "installing schedule"

	if binary == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		binary = exe
	}

	if configPath == "" {
		configPath = filepath.Join(
			filepath.Dir(binary), "config.json",
		)
	}

	if logPath == "" {
		logPath = filepath.Join(
			filepath.Dir(binary), "autosync.log",
		)
	}

	line, created, err := cron.New().Install(
		cron.Entry{
			Schedule: schedule,
			Command: fmt.Sprintf(
				"%s --config %s",
				binary, configPath,
			),
			LogPath: logPath,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if created {
		slog.Info(
			"crontab entry installed",
			"line", line,
		)
	} else {
		slog.Info(
			"crontab entry already present",
			"line", line,
		)
	}

	return nil
}
