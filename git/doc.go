// Package git wraps a local working copy with the handful
// of operations the synchronizer needs: change detection,
// staging with exclude pathspecs, committing, pulling, and
// pushing. Every operation shells out to the git binary —
// no version-control logic, transport, or authentication
// is reimplemented here.
package git
