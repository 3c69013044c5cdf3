// Package cron installs the scheduled sync entry into the
// invoking user's crontab. The entry is identified by a
// marker comment; installation is idempotent and never
// duplicates the line. Unrelated crontab lines are
// preserved verbatim.
package cron
