// Package exec provides shell command execution helpers.
// Non-zero exits surface as *CommandError so callers can
// inspect the exit code and combined output.
package exec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// CommandError reports a command that exited non-zero.
type CommandError struct {
	// Name is the command name.
	Name string

	// Args are the command arguments.
	Args []string

	// Output is the combined stdout+stderr output.
	Output string

	// ExitCode is the process exit code.
	ExitCode int
}

// Error returns a human-readable description including
// the command line, exit code, and captured output.
func (e *CommandError) Error() string {
	return fmt.Sprintf(
		"command failed (%d): %s %s: %s",
		e.ExitCode,
		e.Name,
		strings.Join(e.Args, " "),
		strings.TrimSpace(e.Output),
	)
}

// ExitCode returns the exit code carried by err when it
// is a *CommandError, and -1 otherwise.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}

	return -1
}

// Ex executes the named command in the given directory and
// returns combined stdout+stderr output. Pass empty dir to
// use the current working directory.
func Ex(
	dir string,
	name string,
	arg ...string,
) (string, error) {
	return ExIn(dir, "", name, arg...)
}

// ExIn is Ex with the given string fed to the command's
// standard input. Pass empty input for no stdin.
func ExIn(
	dir string,
	input string,
	name string,
	arg ...string,
) (string, error) {
	const errCtx = "executing command"

	slog.Debug(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
		"dir", dir,
	)

	cmd := exec.CommandContext(context.Background(), name, arg...)
	if dir != "" {
		cmd.Dir = dir
	}

	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	by, err := cmd.CombinedOutput()

	slog.Debug("output", "result", string(by))

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(by), &CommandError{
				Name:     name,
				Args:     arg,
				Output:   string(by),
				ExitCode: exitErr.ExitCode(),
			}
		}

		return string(by), fmt.Errorf(
			"%s: %s %s: %w",
			errCtx, name, strings.Join(arg, " "), err,
		)
	}

	return string(by), nil
}
