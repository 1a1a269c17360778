package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSchedule(t *testing.T) {
	for _, spec := range []string{"", "every day", "@every banana", "61 * * * *"} {
		t.Run(spec, func(t *testing.T) {
			_, err := New(spec, func(context.Context) error { return nil }, zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid schedule")
		})
	}
}

func TestNext(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		spec     string
		expected time.Time
	}{
		{"@every 24h", start.Add(24 * time.Hour)},
		{"@every 6h", start.Add(6 * time.Hour)},
		{"30 7 * * *", time.Date(2026, 3, 3, 7, 30, 0, 0, time.UTC)},
		{"@hourly", start.Add(time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			s, err := New(tt.spec, func(context.Context) error { return nil }, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Next(start))
		})
	}
}

func TestRun_ImmediateRunAndStop(t *testing.T) {
	var runs atomic.Int32
	ran := make(chan struct{}, 1)
	s, err := New("@every 24h", func(context.Context) error {
		runs.Add(1)
		ran <- struct{}{}
		return errors.New("upstream unavailable")
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Run(ctx, true))
	}()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run at start")
	}
	cancel()
	wg.Wait()
	assert.Equal(t, int32(1), runs.Load())
}

func TestRun_NotImmediate(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@every 24h", func(context.Context) error {
		runs.Add(1)
		return nil
	}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx, false))
	assert.Zero(t, runs.Load())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{logger: zerolog.New(&buf).Level(zerolog.InfoLevel)}

	l.Info("wake", "now", "2026-03-02")
	assert.Empty(t, buf.String(), "routine messages are debug level")

	l = Logger{logger: zerolog.New(&buf).Level(zerolog.DebugLevel)}
	l.Info("wake", "now", "2026-03-02")
	assert.Contains(t, buf.String(), `"now":"2026-03-02"`)

	buf.Reset()
	l.Error(errors.New("boom"), "panic", "job", "watch")
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"job":"watch"`)
}
