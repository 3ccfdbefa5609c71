package gormdb

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"placemap/config"
	deliverycontext "placemap/internal/delivery/context"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(t *testing.T, cfg *config.Config) (*gormSlogLogger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l, ok := newGormSlogLogger(base, cfg).(*gormSlogLogger)
	require.True(t, ok)

	return l, &buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		out = append(out, record)
	}

	return out
}

func insertSQL() (string, int64) {
	return `INSERT INTO "Places" ("name") VALUES ("Cafe")`, 1
}

func TestGormSlogLogger_Trace(t *testing.T) {
	begin := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		debug     bool
		elapsed   time.Duration
		err       error
		wantMsg   string
		wantLevel string
	}{
		{
			name:    "fast query is quiet by default",
			elapsed: time.Millisecond,
		},
		{
			name:      "fast query logged in debug",
			debug:     true,
			elapsed:   time.Millisecond,
			wantMsg:   "GORM query",
			wantLevel: "INFO",
		},
		{
			name:      "slow query",
			elapsed:   time.Second,
			wantMsg:   "GORM slow query",
			wantLevel: "WARN",
		},
		{
			name:    "record not found is not a failure",
			elapsed: time.Millisecond,
			err:     gorm.ErrRecordNotFound,
		},
		{
			name:      "constraint violation is a warning",
			elapsed:   time.Millisecond,
			err:       errors.New("NOT NULL constraint failed: Places.name"),
			wantMsg:   "GORM place constraint violated",
			wantLevel: "WARN",
		},
		{
			name:    "abandoned query is quiet by default",
			elapsed: time.Millisecond,
			err:     errors.Wrap(context.Canceled, "interrupted"),
		},
		{
			name:      "abandoned query logged in debug",
			debug:     true,
			elapsed:   time.Millisecond,
			err:       context.DeadlineExceeded,
			wantMsg:   "GORM query abandoned",
			wantLevel: "DEBUG",
		},
		{
			name:      "driver failure",
			elapsed:   time.Millisecond,
			err:       errors.New("database is locked"),
			wantMsg:   "GORM query failed",
			wantLevel: "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Env.Debug = tt.debug
			l, buf := newBufferedGormLogger(t, cfg)
			l.now = func() time.Time { return begin.Add(tt.elapsed) }

			l.Trace(context.Background(), begin, insertSQL, tt.err)

			got := records(t, buf)
			if tt.wantMsg == "" {
				assert.Empty(t, got)

				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantMsg, got[0]["msg"])
			assert.Equal(t, tt.wantLevel, got[0]["level"])
			assert.Contains(t, got[0]["sql"], `"Places"`)
		})
	}
}

func TestGormSlogLogger_SlowThresholdFromConfig(t *testing.T) {
	cfg := &config.Config{Database: &config.DatabaseConfig{SlowQueryThreshold: 2 * time.Second}}
	l, buf := newBufferedGormLogger(t, cfg)

	begin := time.Now()
	l.now = func() time.Time { return begin.Add(time.Second) }
	l.Trace(context.Background(), begin, insertSQL, nil)
	assert.Empty(t, buf.String())

	l.now = func() time.Time { return begin.Add(3 * time.Second) }
	l.Trace(context.Background(), begin, insertSQL, nil)
	got := records(t, buf)
	require.Len(t, got, 1)
	// JSON handlers encode durations as nanoseconds.
	assert.Equal(t, float64(2*time.Second), got[0]["slowThreshold"])
}

func TestGormSlogLogger_UsesRequestLogger(t *testing.T) {
	l, _ := newBufferedGormLogger(t, nil)

	var reqBuf bytes.Buffer
	reqLogger := slog.New(slog.NewJSONHandler(&reqBuf, nil)).With(slog.String("request_id", "req-42"))
	ctx := deliverycontext.WithLogger(context.Background(), reqLogger)

	l.Trace(ctx, time.Now(), insertSQL, errors.New("connection refused"))

	got := records(t, &reqBuf)
	require.Len(t, got, 1)
	assert.Equal(t, "req-42", got[0]["request_id"])
}

func TestGormSlogLogger_Silent(t *testing.T) {
	l, buf := newBufferedGormLogger(t, nil)
	silent := l.LogMode(logger.Silent)

	silent.Trace(context.Background(), time.Now(), insertSQL, errors.New("database is locked"))
	silent.Error(context.Background(), "pool exhausted: %d", 10)
	assert.Empty(t, buf.String())

	l.Warn(context.Background(), "pool at %d%%", 90)
	got := records(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "pool at 90%", got[0]["message"])
}
