package cron_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/autosync/cron"
	"github.com/byte4ever/autosync/exec"
)

// fakeTable simulates the crontab binary against an
// in-memory table. An empty table behaves like a user
// with no crontab: -l exits 1 with the usual message.
type fakeTable struct {
	content string
	writes  int
}

func (f *fakeTable) crontab(
	input string,
	arg ...string,
) (string, error) {
	if len(arg) == 1 && arg[0] == "-l" {
		if f.content == "" {
			out := "no crontab for test"

			return out, &exec.CommandError{
				Name:     "crontab",
				Args:     arg,
				Output:   out,
				ExitCode: 1,
			}
		}

		return f.content, nil
	}

	// "crontab -" replaces the table from stdin.
	f.content = input
	f.writes++

	return "", nil
}

func newInstaller(ft *fakeTable) *cron.Installer {
	return &cron.Installer{Crontab: ft.crontab}
}

func TestEntry_render(t *testing.T) {
	t.Parallel()

	e := cron.Entry{
		Schedule: "*/5 * * * *",
		Command: "/usr/local/bin/autosync " +
			"--config /etc/autosync.json",
		LogPath: "/var/log/autosync.log",
	}

	assert.Equal(
		t,
		"*/5 * * * * /usr/local/bin/autosync "+
			"--config /etc/autosync.json "+
			">> /var/log/autosync.log 2>&1 "+
			"# autosync-managed",
		e.Render(),
	)
}

func TestEntry_render_default_schedule(t *testing.T) {
	t.Parallel()

	e := cron.Entry{
		Command: "/bin/autosync",
		LogPath: "/tmp/a.log",
	}

	assert.True(t, strings.HasPrefix(
		e.Render(), cron.DefaultSchedule+" ",
	))
}

func TestEntry_render_no_log_path(t *testing.T) {
	t.Parallel()

	e := cron.Entry{Command: "/bin/autosync"}

	assert.Equal(
		t,
		"*/5 * * * * /bin/autosync "+
			"# autosync-managed",
		e.Render(),
	)
}

func TestInstall_empty_table(t *testing.T) {
	t.Parallel()

	ft := &fakeTable{}
	in := newInstaller(ft)

	line, created, err := in.Install(cron.Entry{
		Command: "/bin/autosync",
		LogPath: "/tmp/a.log",
	})

	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, line, cron.Marker)
	assert.Equal(t, line+"\n", ft.content)
}

func TestInstall_preserves_unrelated_lines(t *testing.T) {
	t.Parallel()

	ft := &fakeTable{
		content: "0 4 * * * /usr/bin/backup\n",
	}
	in := newInstaller(ft)

	_, created, err := in.Install(cron.Entry{
		Command: "/bin/autosync",
		LogPath: "/tmp/a.log",
	})

	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(
		t, ft.content, "0 4 * * * /usr/bin/backup",
	)
	assert.Contains(t, ft.content, cron.Marker)
	assert.True(
		t, strings.HasSuffix(ft.content, "\n"),
	)
}

func TestInstall_twice_is_idempotent(t *testing.T) {
	t.Parallel()

	ft := &fakeTable{}
	in := newInstaller(ft)

	e := cron.Entry{
		Command: "/bin/autosync",
		LogPath: "/tmp/a.log",
	}

	first, created, err := in.Install(e)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := in.Install(e)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)

	// Exactly one write, exactly one managed line.
	assert.Equal(t, 1, ft.writes)
	assert.Equal(
		t,
		1,
		strings.Count(ft.content, cron.Marker),
	)
}

func TestInstall_existing_marker_no_write(t *testing.T) {
	t.Parallel()

	existing := "*/5 * * * * /old/autosync " +
		">> /tmp/a.log 2>&1 # autosync-managed\n"

	ft := &fakeTable{content: existing}
	in := newInstaller(ft)

	line, created, err := in.Install(cron.Entry{
		Command: "/new/autosync",
		LogPath: "/tmp/b.log",
	})

	require.NoError(t, err)
	assert.False(t, created)
	assert.Contains(t, line, "/old/autosync")
	assert.Zero(t, ft.writes)
}

func TestFindManaged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table string
		want  bool
	}{
		{
			name:  "empty table",
			table: "",
			want:  false,
		},
		{
			name:  "unrelated lines only",
			table: "0 4 * * * /usr/bin/backup\n",
			want:  false,
		},
		{
			name: "managed line present",
			table: "0 4 * * * /usr/bin/backup\n" +
				"*/5 * * * * /bin/autosync " +
				"# autosync-managed\n",
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, ok := cron.FindManaged(tt.table)
			assert.Equal(t, tt.want, ok)
		})
	}
}
