package cron

import (
	"fmt"
	"strings"

	"github.com/byte4ever/autosync/exec"
)

// Marker is the comment identifying the managed crontab
// line. Install never duplicates a line carrying it.
const Marker = "# autosync-managed"

// DefaultSchedule runs the sync every five minutes.
const DefaultSchedule = "*/5 * * * *"

// Entry describes the crontab line to install.
type Entry struct {
	// Schedule is the cron time specification.
	// Defaults to DefaultSchedule when empty.
	Schedule string

	// Command is the full command to run, including
	// flags.
	Command string

	// LogPath receives the command's combined output.
	// When empty, no redirection is rendered.
	LogPath string
}

// Render produces the crontab line for the entry,
// redirecting output to the log file and appending the
// marker comment.
func (e Entry) Render() string {
	schedule := e.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	redirect := ""
	if e.LogPath != "" {
		redirect = fmt.Sprintf(
			">> %s 2>&1 ", e.LogPath,
		)
	}

	return fmt.Sprintf(
		"%s %s %s%s",
		schedule, e.Command, redirect, Marker,
	)
}

// Installer manages the user's crontab through the
// crontab binary.
type Installer struct {
	// Crontab invokes the crontab binary with the
	// given arguments, feeding input to its stdin.
	// Tests replace it; New wires the real binary.
	Crontab func(
		input string,
		arg ...string,
	) (string, error)
}

// New returns an Installer bound to the real crontab
// binary.
func New() *Installer {
	return &Installer{
		Crontab: func(
			input string,
			arg ...string,
		) (string, error) {
			return exec.ExIn(
				"", input, "crontab", arg...,
			)
		},
	}
}

// Install ensures the crontab contains exactly one
// managed entry. When a line with the marker already
// exists the table is left untouched and the existing
// line is returned with created=false. Otherwise the
// rendered entry is appended and the table written back.
func (in *Installer) Install(
	e Entry,
) (line string, created bool, err error) {
	const errCtx = "installing crontab entry"

	table, err := in.readTable()
	if err != nil {
		return "", false, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	if existing, ok := FindManaged(table); ok {
		return existing, false, nil
	}

	rendered := e.Render()

	if _, err := in.Crontab(
		appendLine(table, rendered), "-",
	); err != nil {
		return "", false, fmt.Errorf(
			"%s: write table: %w", errCtx, err,
		)
	}

	return rendered, true, nil
}

// readTable returns the current crontab content. A
// missing table ("no crontab for <user>", exit 1) is an
// empty table, not an error.
func (in *Installer) readTable() (string, error) {
	const errCtx = "reading crontab"

	out, err := in.Crontab("", "-l")
	if err != nil {
		if strings.Contains(out, "no crontab") {
			return "", nil
		}

		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return out, nil
}

// FindManaged returns the line carrying the marker, if
// the table contains one.
func FindManaged(table string) (string, bool) {
	for _, line := range strings.Split(table, "\n") {
		if strings.Contains(line, Marker) {
			return line, true
		}
	}

	return "", false
}

// appendLine appends line to the table, preserving the
// existing content and ending with a newline (crontab
// rejects tables without one).
func appendLine(table string, line string) string {
	var sb strings.Builder

	trimmed := strings.TrimRight(table, "\n")
	if trimmed != "" {
		sb.WriteString(trimmed)
		sb.WriteByte('\n')
	}

	sb.WriteString(line)
	sb.WriteByte('\n')

	return sb.String()
}
