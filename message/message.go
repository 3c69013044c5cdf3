// Package message composes commit messages from
// configured templates. The only placeholder is
// {timestamp}, substituted with the wall-clock time the
// run started; unknown placeholders are preserved as-is.
package message

import (
	"time"

	"github.com/valyala/fasttemplate"
)

// TimestampFormat is the canonical timestamp layout used
// in commit messages: RFC 3339 with seconds precision in
// the local time zone. This format is part of the
// observable commit-message contract.
const TimestampFormat = time.RFC3339

// Timestamp formats t with TimestampFormat.
func Timestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}

// Compose substitutes {timestamp} in template with the
// given timestamp string.
func Compose(template string, timestamp string) string {
	return fasttemplate.ExecuteStringStd(
		template, "{", "}",
		map[string]interface{}{
			"timestamp": timestamp,
		},
	)
}
