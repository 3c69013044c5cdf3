package message_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/autosync/message"
)

func TestCompose(t *testing.T) {
	t.Parallel()

	got := message.Compose(
		"Auto-sync {timestamp}",
		"2026-08-30T14:05:00+02:00",
	)

	assert.Equal(
		t,
		"Auto-sync 2026-08-30T14:05:00+02:00",
		got,
	)
}

func TestCompose_no_placeholder(t *testing.T) {
	t.Parallel()

	got := message.Compose("plain message", "ts")

	assert.Equal(t, "plain message", got)
}

func TestCompose_unknown_placeholder_kept(t *testing.T) {
	t.Parallel()

	got := message.Compose(
		"sync {timestamp} by {user}", "ts",
	)

	assert.Equal(t, "sync ts by {user}", got)
}

func TestCompose_repeated_placeholder(t *testing.T) {
	t.Parallel()

	got := message.Compose(
		"{timestamp} / {timestamp}", "ts",
	)

	assert.Equal(t, "ts / ts", got)
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(
		2026, time.August, 30, 14, 5, 0, 0, loc,
	)

	assert.Equal(
		t,
		"2026-08-30T14:05:00+02:00",
		message.Timestamp(ts),
	)
}
