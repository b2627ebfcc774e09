package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/trac2md/internal/migrate"
	"git.home.luguber.info/inful/trac2md/internal/report"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []migrate.Selection
	start  time.Time
	failed bool
	err    error
}

func (f *fakeRunner) Run(_ context.Context, sel migrate.Selection) (*report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sel)
	if f.err != nil {
		return nil, f.err
	}
	started := f.start.Add(time.Duration(len(f.calls)) * time.Hour)
	rep := report.New("run", started)
	rep.Add(report.PageResult{Name: "WikiStart"})
	if f.failed {
		rep.Add(report.PageResult{Name: "Broken", Error: "boom"})
	}
	rep.Finish(started.Add(time.Second))
	return rep, nil
}

func (f *fakeRunner) selections() []migrate.Selection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]migrate.Selection(nil), f.calls...)
}

func testDaemonConfig(t *testing.T) Config {
	t.Helper()
	return Config{Interval: time.Hour, StateFile: filepath.Join(t.TempDir(), "state.yaml")}
}

// runUntil starts d and stops it once n runs finished.
func runUntil(t *testing.T, d *Daemon, n int, during func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	done := 0
	d.OnRun = func(string, *report.Report, error) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if done == 1 && during != nil {
			go during()
		}
		if done >= n {
			cancel()
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestNew_Validation(t *testing.T) {
	runner := &fakeRunner{}
	tests := []struct {
		name   string
		runner Runner
		cfg    Config
	}{
		{"nil runner", nil, Config{Interval: time.Hour, StateFile: "s"}},
		{"zero interval", runner, Config{StateFile: "s"}},
		{"no state file", runner, Config{Interval: time.Hour}},
		{"watch without database", runner, Config{Interval: time.Hour, StateFile: "s", Watch: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.runner, tt.cfg, discardLogger())
			require.Error(t, err)
		})
	}
}

func TestDaemon_StartupRunStoresState(t *testing.T) {
	runner := &fakeRunner{start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	cfg := testDaemonConfig(t)
	d, err := New(runner, cfg, discardLogger())
	require.NoError(t, err)

	runUntil(t, d, 1, nil)

	calls := runner.selections()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Since.IsZero())

	st, err := NewStateStore(cfg.StateFile).Load()
	require.NoError(t, err)
	assert.True(t, runner.start.Add(time.Hour).Equal(st.LastRun))
	assert.Equal(t, 1, st.Pages)
}

func TestDaemon_UsesStoredBound(t *testing.T) {
	cfg := testDaemonConfig(t)
	last := time.Date(2023, time.May, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, NewStateStore(cfg.StateFile).Save(State{LastRun: last}))

	runner := &fakeRunner{start: last}
	d, err := New(runner, cfg, discardLogger())
	require.NoError(t, err)

	runUntil(t, d, 1, nil)
	calls := runner.selections()
	require.Len(t, calls, 1)
	assert.True(t, last.Equal(calls[0].Since))
}

func TestDaemon_FailedPagesKeepBound(t *testing.T) {
	cfg := testDaemonConfig(t)
	last := time.Date(2023, time.May, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, NewStateStore(cfg.StateFile).Save(State{LastRun: last}))

	d, err := New(&fakeRunner{start: last, failed: true}, cfg, discardLogger())
	require.NoError(t, err)
	runUntil(t, d, 1, nil)

	st, err := NewStateStore(cfg.StateFile).Load()
	require.NoError(t, err)
	assert.True(t, last.Equal(st.LastRun))
	assert.Equal(t, 1, st.Failed)
}

func TestDaemon_RunErrorKeepsState(t *testing.T) {
	cfg := testDaemonConfig(t)
	d, err := New(&fakeRunner{err: assert.AnError}, cfg, discardLogger())
	require.NoError(t, err)
	runUntil(t, d, 1, nil)

	_, err = os.Stat(cfg.StateFile)
	assert.True(t, os.IsNotExist(err))
}

func TestDaemon_ExplicitTrigger(t *testing.T) {
	runner := &fakeRunner{start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	d, err := New(runner, testDaemonConfig(t), discardLogger())
	require.NoError(t, err)

	runUntil(t, d, 2, func() { d.Trigger("test") })

	calls := runner.selections()
	require.Len(t, calls, 2)
	assert.True(t, runner.start.Add(time.Hour).Equal(calls[1].Since), "second run starts at the first run's start")
}

func TestDaemon_WatchTriggersRun(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "trac.db")
	require.NoError(t, os.WriteFile(db, []byte("v0"), 0o600))

	cfg := testDaemonConfig(t)
	cfg.Watch = true
	cfg.DatabasePath = db
	cfg.Debounce = 50 * time.Millisecond

	runner := &fakeRunner{}
	d, err := New(runner, cfg, discardLogger())
	require.NoError(t, err)

	runUntil(t, d, 2, func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(db, []byte("v1"), 0o600)
	})
	assert.Len(t, runner.selections(), 2)
}

func TestDaemon_TriggerCoalesces(t *testing.T) {
	d, err := New(&fakeRunner{}, testDaemonConfig(t), discardLogger())
	require.NoError(t, err)

	d.Trigger("a")
	d.Trigger("b")
	d.Trigger("c")
	assert.Len(t, d.triggers, 1)
}
