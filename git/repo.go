package git

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/byte4ever/autosync/exec"
)

// ErrNotRepo reports that a configured path does not exist
// or is not a git working copy.
var ErrNotRepo = errors.New("not a git repository")

// Repo is a local git working copy. Create with Open,
// which validates the directory.
type Repo struct {
	// Dir is the filesystem location of the working
	// copy.
	Dir string
}

// Open validates dir and returns a Repo for it. The
// directory must exist and be a repository root — a
// subdirectory inside a working copy is rejected, so
// exclude patterns always anchor at the root git
// operates on. Failures wrap ErrNotRepo.
func Open(dir string) (*Repo, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf(
			"%w: %s: %w", ErrNotRepo, dir, err,
		)
	}

	// Repository roots carry .git directly (a
	// directory, or a file for worktrees).
	if _, err := os.Stat(
		filepath.Join(dir, ".git"),
	); err != nil {
		return nil, fmt.Errorf(
			"%w: %s: %w", ErrNotRepo, dir, err,
		)
	}

	if _, err := exec.Ex(
		dir, "git", "rev-parse", "--git-dir",
	); err != nil {
		return nil, fmt.Errorf(
			"%w: %s: %w", ErrNotRepo, dir, err,
		)
	}

	return &Repo{Dir: dir}, nil
}

// ChangedFiles returns working-tree paths that differ from
// HEAD, untracked files included, with paths matching any
// exclude pattern filtered out by git itself.
func (r *Repo) ChangedFiles(
	excludes []string,
) ([]string, error) {
	const errCtx = "listing changed files"

	args := append(
		[]string{
			"status", "--porcelain",
			"--untracked-files=all",
		},
		pathspec(excludes)...,
	)

	out, err := exec.Ex(r.Dir, "git", args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var files []string

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if len(line) < 4 {
			continue
		}

		// Porcelain lines are "XY path"; renames are
		// "XY old -> new".
		path := line[3:]
		if idx := strings.Index(
			path, " -> ",
		); idx >= 0 {
			path = path[idx+4:]
		}

		files = append(files, unquote(path))
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return files, nil
}

// StageAll adds all changes to the index, skipping paths
// that match any exclude pattern.
func (r *Repo) StageAll(excludes []string) error {
	const errCtx = "staging changes"

	args := append(
		[]string{"add", "-A"},
		pathspec(excludes)...,
	)

	if _, err := exec.Ex(
		r.Dir, "git", args...,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// HasStagedChanges reports whether the index differs from
// HEAD. Uses git diff --cached --quiet: exit 0 means
// clean, exit 1 means staged changes, anything else is an
// error.
func (r *Repo) HasStagedChanges() (bool, error) {
	const errCtx = "checking staged changes"

	_, err := exec.Ex(
		r.Dir, "git", "diff", "--cached", "--quiet",
	)
	if err == nil {
		return false, nil
	}

	if exec.ExitCode(err) == 1 {
		return true, nil
	}

	return false, fmt.Errorf("%s: %w", errCtx, err)
}

// Commit records the staged changes with the given
// message. Returns false without error when git reports
// nothing to commit. allowEmpty permits an empty commit on
// a clean tree.
func (r *Repo) Commit(
	message string,
	allowEmpty bool,
) (bool, error) {
	const errCtx = "committing"

	args := []string{"commit", "-m", message}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}

	out, err := exec.Ex(r.Dir, "git", args...)
	if err != nil {
		if strings.Contains(out, "nothing to commit") {
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return true, nil
}

// Fetch updates remote-tracking refs from the given
// remote.
func (r *Repo) Fetch(remote string) error {
	const errCtx = "fetching"

	if _, err := exec.Ex(
		r.Dir, "git", "fetch", remote,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// PullRebase rebases local work on top of the remote
// branch, autostashing uncommitted changes around the
// rebase.
func (r *Repo) PullRebase(
	remote string,
	branch string,
) error {
	const errCtx = "pulling"

	if _, err := exec.Ex(
		r.Dir, "git",
		"pull", "--rebase", "--autostash",
		remote, branch,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Push pushes the given branch to the remote.
func (r *Repo) Push(
	remote string,
	branch string,
) error {
	const errCtx = "pushing"

	if _, err := exec.Ex(
		r.Dir, "git", "push", remote, branch,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// pathspec builds the pathspec arguments restricting a
// status or add invocation to the repository root minus
// the exclude patterns. A file matching any pattern is
// excluded (git applies the patterns as a logical OR).
func pathspec(excludes []string) []string {
	args := []string{"--", "."}

	for _, pat := range excludes {
		args = append(
			args,
			fmt.Sprintf(":(exclude,glob)%s", pat),
		)
	}

	return args
}

// unquote strips the C-style quoting git applies to paths
// containing special characters. Escape sequences inside
// are left as-is; only the surrounding quotes matter for
// reporting.
func unquote(path string) string {
	if len(path) >= 2 &&
		strings.HasPrefix(path, `"`) &&
		strings.HasSuffix(path, `"`) {
		return path[1 : len(path)-1]
	}

	return path
}
