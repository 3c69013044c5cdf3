// Package config loads repository sync configuration from
// a JSON or YAML file. A file holds an ordered list of
// repository targets under "repos" plus an optional
// "global" section with run-wide toggles.
//
// Load is the only entry point. Every failure mode —
// missing file, parse error, missing required field —
// surfaces as a *Error carrying the file path, and is
// fatal to the run.
package config
