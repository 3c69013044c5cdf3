// Package sync orchestrates the per-repository
// synchronization sequence: validate the working copy,
// optionally pull, detect changes with excludes applied,
// stage, commit with a templated message, and push.
//
// Repositories are processed strictly sequentially. Each
// one is independent: a failure is recorded in the
// Report and the loop continues with the next
// configuration. The main entry point is Run on a Syncer
// built with New.
package sync
