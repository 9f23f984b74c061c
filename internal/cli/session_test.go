package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/boardom/internal/testutils"
	"github.com/aretw0/boardom/pkg/snapshot"
)

const trainerConfig = `
log_level: warn
state:
  best: 1.5
components:
  - name: decay
    options:
      initial: 4
      rate: 0.5
  - name: averager
  - name: progress
    options:
      every: 2
phases:
  - name: training
    epochs: 1
    steps: 3
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	return testutils.WriteFile(t, "boardom.yaml", content)
}

func TestRunSession_PrintsSnapshot(t *testing.T) {
	var out bytes.Buffer
	metrics := filepath.Join(t.TempDir(), "metrics.prom")

	err := RunSession(t.Context(), RunOptions{
		ConfigPath:  writeConfig(t, trainerConfig),
		MetricsFile: metrics,
		Out:         &out,
	})
	require.NoError(t, err)

	snap, err := snapshot.Unmarshal(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"best", "averager", "training"}, snap.State.Keys())
	assert.Equal(t, 1.5, snap.State.GetOr("best", nil))
	assert.Equal(t, 3, snap.State.GetOr("averager.count", nil))
	assert.InDelta(t, 7.0, snap.State.GetOr("averager.sum", nil), 1e-9)
	assert.False(t, snap.State.Contains("training.loss"), "per-step values are cleaned up")

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `boardom_events_fired_total{event="training_step"} 3`)
}

func TestRunSession_RedisResume(t *testing.T) {
	mr := miniredis.RunT(t)
	path := writeConfig(t, trainerConfig)

	var first bytes.Buffer
	require.NoError(t, RunSession(t.Context(), RunOptions{ConfigPath: path, RedisAddr: mr.Addr(), Out: &first}))
	snap, err := snapshot.Unmarshal(first.Bytes())
	require.NoError(t, err)
	assert.True(t, mr.Exists("boardom:snapshot:"+snap.EngineID))

	var second bytes.Buffer
	require.NoError(t, RunSession(t.Context(), RunOptions{
		ConfigPath: path,
		RedisAddr:  mr.Addr(),
		Resume:     snap.EngineID,
		Out:        &second,
	}))
	resumed, err := snapshot.Unmarshal(second.Bytes())
	require.NoError(t, err)
	assert.NotEqual(t, snap.EngineID, resumed.EngineID)
	assert.Equal(t, 6, resumed.State.GetOr("averager.count", nil), "totals carry over")
}

func TestRunSession_NamedSession(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := RunOptions{ConfigPath: writeConfig(t, trainerConfig), RedisAddr: mr.Addr(), Session: "nightly"}

	for _, want := range []int{3, 6} {
		var out bytes.Buffer
		opts.Out = &out
		require.NoError(t, RunSession(t.Context(), opts))
		snap, err := snapshot.Unmarshal(out.Bytes())
		require.NoError(t, err)
		assert.Equal(t, want, snap.State.GetOr("averager.count", nil))
		assert.Equal(t, want, snap.State.GetOr("training.completed_steps", nil))
	}
	assert.True(t, mr.Exists("boardom:snapshot:nightly"))
}

func TestRunSession_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts RunOptions
	}{
		{"missing config", RunOptions{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")}},
		{"unknown component", RunOptions{ConfigPath: writeConfig(t, "components:\n  - name: nope\n")}},
		{"bad log level", RunOptions{ConfigPath: writeConfig(t, trainerConfig), LogLevel: "loud"}},
		{"bad phase", RunOptions{ConfigPath: writeConfig(t, "phases:\n  - name: keys\n    steps: 1\n")}},
		{"resume without redis", RunOptions{ConfigPath: writeConfig(t, trainerConfig), Resume: "abc"}},
		{"session without redis", RunOptions{ConfigPath: writeConfig(t, trainerConfig), Session: "abc"}},
		{"resume and session", RunOptions{ConfigPath: writeConfig(t, trainerConfig), Resume: "abc", Session: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Out = &bytes.Buffer{}
			assert.Error(t, RunSession(t.Context(), tt.opts))
		})
	}
}

func TestListEvents(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ListEvents(RunOptions{ConfigPath: writeConfig(t, trainerConfig), Out: &out}))
	assert.True(t, strings.HasPrefix(out.String(), "training_step\n  decay\n  accumulate(bound to "), out.String())
	assert.Contains(t, out.String(), "  progress\n")
}
