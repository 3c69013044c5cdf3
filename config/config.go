package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// RepoConfig describes one repository sync target. All
// fields except Excludes are required. Instances are built
// once per run by Load and never mutated afterwards.
type RepoConfig struct {
	// Path is the filesystem location of the working
	// copy.
	Path string `json:"path" yaml:"path"`

	// Remote is the name of the remote to push to.
	Remote string `json:"remote" yaml:"remote"`

	// Branch is the name of the branch to push.
	Branch string `json:"branch" yaml:"branch"`

	// Message is the commit message template. The
	// {timestamp} placeholder is substituted at commit
	// time.
	Message string `json:"message" yaml:"message"`

	// Excludes are glob patterns relative to the
	// repository root. Files matching any pattern are
	// omitted from staging.
	Excludes []string `json:"excludes" yaml:"excludes"`
}

// GlobalConfig holds run-wide toggles shared by all
// repositories.
type GlobalConfig struct {
	// PullRebase enables a fetch + rebase pull before
	// staging.
	PullRebase bool

	// Push enables pushing after a commit.
	Push bool

	// CommitIfNoChanges creates an empty commit when the
	// tree is clean. Off by default so scheduled runs
	// stay idempotent.
	CommitIfNoChanges bool
}

// File is a fully loaded and validated configuration file.
type File struct {
	Repos  []RepoConfig
	Global GlobalConfig
}

// Error reports a missing, unparsable, or invalid
// configuration file. It is fatal: no repository is
// processed when Load fails.
type Error struct {
	// Path is the configuration file location.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error returns the file path and the underlying cause.
func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// rawGlobal mirrors the optional "global" section.
// Pointers distinguish absent fields from explicit false.
type rawGlobal struct {
	PullRebase        *bool `json:"pull_rebase" yaml:"pull_rebase"`
	Push              *bool `json:"push" yaml:"push"`
	CommitIfNoChanges *bool `json:"commit_if_no_changes" yaml:"commit_if_no_changes"`
}

// rawFile mirrors the on-disk configuration layout.
type rawFile struct {
	Repos  []RepoConfig `json:"repos" yaml:"repos"`
	Global rawGlobal    `json:"global" yaml:"global"`
}

// Load reads and validates the configuration file at path.
// Files ending in .yaml or .yml decode as YAML, everything
// else as JSON. All failures return a *Error.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	var raw rawFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}

	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	if err := validate(raw.Repos); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	return &File{
		Repos:  raw.Repos,
		Global: resolveGlobal(raw.Global),
	}, nil
}

// validate checks that repos is non-empty and every entry
// carries all required fields.
func validate(repos []RepoConfig) error {
	if len(repos) == 0 {
		return errors.New(
			"'repos' must be a non-empty list",
		)
	}

	required := []struct {
		name  string
		value func(RepoConfig) string
	}{
		{"path", func(r RepoConfig) string { return r.Path }},
		{"remote", func(r RepoConfig) string { return r.Remote }},
		{"branch", func(r RepoConfig) string { return r.Branch }},
		{"message", func(r RepoConfig) string { return r.Message }},
	}

	for i, repo := range repos {
		for _, f := range required {
			if f.value(repo) == "" {
				return fmt.Errorf(
					"repos[%d]: missing required field %q",
					i, f.name,
				)
			}
		}
	}

	return nil
}

// resolveGlobal applies defaults for absent global fields:
// pull_rebase and push default to true,
// commit_if_no_changes to false.
func resolveGlobal(raw rawGlobal) GlobalConfig {
	g := GlobalConfig{
		PullRebase: true,
		Push:       true,
	}

	if raw.PullRebase != nil {
		g.PullRebase = *raw.PullRebase
	}

	if raw.Push != nil {
		g.Push = *raw.Push
	}

	if raw.CommitIfNoChanges != nil {
		g.CommitIfNoChanges = *raw.CommitIfNoChanges
	}

	return g
}
