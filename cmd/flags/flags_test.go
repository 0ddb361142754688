package flags

import (
	"testing"
	"time"

	"github.com/ruteri/aoss-provisioner/provisioner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// pollOptionsFor runs a throwaway app with args and returns the parsed poll options.
func pollOptionsFor(t *testing.T, args ...string) provisioner.PollOptions {
	var opts provisioner.PollOptions
	app := &cli.App{
		Name:  "test",
		Flags: PipelineFlags,
		Action: func(cCtx *cli.Context) error {
			opts = PollOptions(cCtx)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return opts
}

func TestPollOptions(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantInterval time.Duration
		wantAttempts int
	}{
		{"defaults", nil, provisioner.DefaultPollInterval, provisioner.DefaultMaxAttempts},
		{"dry run shortens the default", []string{"--dry-run"}, DryRunPollInterval, provisioner.DefaultMaxAttempts},
		{"explicit interval wins on dry run", []string{"--dry-run", "--poll-interval", "2s"}, 2 * time.Second, provisioner.DefaultMaxAttempts},
		{"explicit interval and attempts", []string{"--poll-interval", "10s", "--poll-max-attempts", "0"}, 10 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := pollOptionsFor(t, tt.args...)
			assert.Equal(t, tt.wantInterval, opts.Interval)
			assert.Equal(t, tt.wantAttempts, opts.MaxAttempts)
		})
	}
}
