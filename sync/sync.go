package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/byte4ever/autosync/config"
	"github.com/byte4ever/autosync/git"
	"github.com/byte4ever/autosync/message"
)

// Client is the narrow port to the version-control tool.
// *git.Repo is the production implementation; tests use a
// fake to exercise the control flow without a repository.
type Client interface {
	// ChangedFiles returns working-tree paths that
	// differ from HEAD, exclude patterns applied.
	ChangedFiles(excludes []string) ([]string, error)

	// StageAll adds all non-excluded changes to the
	// index.
	StageAll(excludes []string) error

	// HasStagedChanges reports whether the index
	// differs from HEAD.
	HasStagedChanges() (bool, error)

	// Commit records staged changes. Returns false
	// without error when there is nothing to commit.
	Commit(message string, allowEmpty bool) (bool, error)

	// Fetch updates remote-tracking refs.
	Fetch(remote string) error

	// PullRebase rebases local work on the remote
	// branch.
	PullRebase(remote string, branch string) error

	// Push pushes the branch to the remote.
	Push(remote string, branch string) error
}

// Outcome classifies how a repository's turn ended.
type Outcome string

const (
	// OutcomeSkipped means no relevant changes existed;
	// nothing was mutated.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeCommitted means a commit was created but
	// pushing is disabled.
	OutcomeCommitted Outcome = "committed"

	// OutcomePushed means a commit was created and
	// pushed.
	OutcomePushed Outcome = "committed+pushed"

	// OutcomeDryRun means changes were detected but no
	// mutating command ran.
	OutcomeDryRun Outcome = "dry-run"

	// OutcomeFailed means the repository's turn ended
	// with an error.
	OutcomeFailed Outcome = "failed"
)

// Result is the outcome of one repository's turn.
type Result struct {
	// Path identifies the repository.
	Path string

	// Outcome classifies the turn.
	Outcome Outcome

	// Detail is a short human-readable note.
	Detail string

	// Err is set when Outcome is OutcomeFailed.
	Err error
}

// Report collects the per-repository results of a run.
type Report struct {
	// Results holds one entry per configured
	// repository, in configuration order.
	Results []Result
}

// Failed returns the number of failed repositories.
func (rp Report) Failed() int {
	n := 0

	for _, res := range rp.Results {
		if res.Outcome == OutcomeFailed {
			n++
		}
	}

	return n
}

// Options holds process-wide settings for a run. Zero
// value means live mode with real clock and real git.
type Options struct {
	// DryRun disables every mutating git command;
	// detection still runs and intended actions are
	// logged.
	DryRun bool

	// Now supplies the wall-clock time. Defaults to
	// time.Now.
	Now func() time.Time

	// Open creates a Client for a repository path.
	// Defaults to git.Open.
	Open func(dir string) (Client, error)
}

// Syncer processes configured repositories one at a time,
// in sequence, with no shared state between iterations.
type Syncer struct {
	global config.GlobalConfig
	opts   Options
}

// New creates a Syncer, filling option defaults.
func New(
	global config.GlobalConfig,
	opts Options,
) *Syncer {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Open == nil {
		opts.Open = func(dir string) (Client, error) {
			return git.Open(dir)
		}
	}

	return &Syncer{global: global, opts: opts}
}

// Run processes every repository in order. One
// repository's failure never aborts the rest; ctx
// cancellation stops the loop between repositories. The
// timestamp is computed once and shared by all
// repositories in the run.
func (s *Syncer) Run(
	ctx context.Context,
	repos []config.RepoConfig,
) Report {
	ts := message.Timestamp(s.opts.Now())

	results := make([]Result, 0, len(repos))

	for _, rc := range repos {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{
				Path:    rc.Path,
				Outcome: OutcomeFailed,
				Err:     err,
			})

			break
		}

		res := s.syncRepo(rc, ts)
		results = append(results, res)

		logResult(res)
	}

	return Report{Results: results}
}

// syncRepo performs the detect, stage, commit, push
// sequence for one repository.
//
//nolint:cyclop // the sequence is inherently step-by-step
func (s *Syncer) syncRepo(
	rc config.RepoConfig,
	ts string,
) Result {
	fail := func(step string, err error) Result {
		return Result{
			Path:    rc.Path,
			Outcome: OutcomeFailed,
			Detail:  step,
			Err: fmt.Errorf(
				"%s: %w", step, err,
			),
		}
	}

	cl, err := s.opts.Open(rc.Path)
	if err != nil {
		return fail("opening repository", err)
	}

	if s.global.PullRebase {
		if s.opts.DryRun {
			slog.Info(
				"dry run: would pull",
				"path", rc.Path,
				"remote", rc.Remote,
				"branch", rc.Branch,
			)
		} else {
			// Fetch is best effort; the pull decides.
			if fetchErr := cl.Fetch(
				rc.Remote,
			); fetchErr != nil {
				slog.Warn(
					"fetch failed",
					"path", rc.Path,
					"error", fetchErr,
				)
			}

			if err := cl.PullRebase(
				rc.Remote, rc.Branch,
			); err != nil {
				return fail("pulling", err)
			}
		}
	}

	changed, err := cl.ChangedFiles(rc.Excludes)
	if err != nil {
		return fail("detecting changes", err)
	}

	if len(changed) == 0 &&
		!s.global.CommitIfNoChanges {
		return Result{
			Path:    rc.Path,
			Outcome: OutcomeSkipped,
			Detail:  "no changes",
		}
	}

	if s.opts.DryRun {
		detail := fmt.Sprintf(
			"would commit %d file(s)", len(changed),
		)
		if s.global.Push {
			detail += fmt.Sprintf(
				" and push to %s/%s",
				rc.Remote, rc.Branch,
			)
		}

		return Result{
			Path:    rc.Path,
			Outcome: OutcomeDryRun,
			Detail:  detail,
		}
	}

	if err := cl.StageAll(rc.Excludes); err != nil {
		return fail("staging changes", err)
	}

	staged, err := cl.HasStagedChanges()
	if err != nil {
		return fail("checking staged changes", err)
	}

	if !staged && !s.global.CommitIfNoChanges {
		return Result{
			Path:    rc.Path,
			Outcome: OutcomeSkipped,
			Detail:  "nothing staged after excludes",
		}
	}

	msg := message.Compose(rc.Message, ts)

	committed, err := cl.Commit(
		msg, s.global.CommitIfNoChanges,
	)
	if err != nil {
		return fail("committing", err)
	}

	if !committed {
		// Race between detection and staging: the
		// tree became clean. A no-op, not an error.
		return Result{
			Path:    rc.Path,
			Outcome: OutcomeSkipped,
			Detail:  "nothing to commit",
		}
	}

	if !s.global.Push {
		return Result{
			Path:    rc.Path,
			Outcome: OutcomeCommitted,
			Detail:  "push disabled",
		}
	}

	if err := cl.Push(rc.Remote, rc.Branch); err != nil {
		return fail("pushing", err)
	}

	return Result{
		Path:    rc.Path,
		Outcome: OutcomePushed,
		Detail: fmt.Sprintf(
			"%d file(s) to %s/%s",
			len(changed), rc.Remote, rc.Branch,
		),
	}
}

// logResult emits the per-repository summary line.
func logResult(res Result) {
	if res.Outcome == OutcomeFailed {
		slog.Error(
			"repository failed",
			"path", res.Path,
			"error", res.Err,
		)

		return
	}

	slog.Info(
		"repository processed",
		"path", res.Path,
		"outcome", string(res.Outcome),
		"detail", res.Detail,
	)
}
