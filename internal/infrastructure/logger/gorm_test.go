package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedSQLLogger(level gormlogger.LogLevel, slow time.Duration) (*SQLLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewSQLLogger(zap.New(core), level, slow), recorded
}

func statement() (string, int64) {
	return `SELECT * FROM "catalog_products" WHERE shop_id = 'blocks'`, 3
}

func TestSQLLogger_Trace(t *testing.T) {
	longAgo := func() time.Time { return time.Now().Add(-time.Second) }

	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		slow      time.Duration
		begin     func() time.Time
		err       error
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{
			name: "failure at error level", level: gormlogger.Error, begin: time.Now,
			err: errors.New("no such table"), wantLevel: zapcore.ErrorLevel, wantMsg: "SQL statement failed",
		},
		{
			name: "slow at warn level", level: gormlogger.Warn, slow: 100 * time.Millisecond, begin: longAgo,
			wantLevel: zapcore.WarnLevel, wantMsg: "Slow SQL statement",
		},
		{
			name: "ordinary at info level", level: gormlogger.Info, begin: time.Now,
			wantLevel: zapcore.DebugLevel, wantMsg: "SQL statement",
		},
		{
			name: "zero threshold never warns", level: gormlogger.Info, begin: longAgo,
			wantLevel: zapcore.DebugLevel, wantMsg: "SQL statement",
		},
		{name: "ordinary at warn level", level: gormlogger.Warn, begin: time.Now},
		{name: "slow at error level", level: gormlogger.Error, slow: time.Millisecond, begin: longAgo},
		{name: "record not found", level: gormlogger.Info, begin: time.Now, err: gormlogger.ErrRecordNotFound,
			wantLevel: zapcore.DebugLevel, wantMsg: "SQL statement"},
		{name: "silent", level: gormlogger.Silent, begin: time.Now, err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, recorded := observedSQLLogger(tt.level, tt.slow)

			log.Trace(context.Background(), tt.begin(), statement, tt.err)

			if tt.wantMsg == "" {
				assert.Empty(t, recorded.All())
				return
			}
			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			assert.Equal(t, tt.wantMsg, entries[0].Message)
			assert.Equal(t, "sql", entries[0].LoggerName)

			fields := entries[0].ContextMap()
			assert.Equal(t, int64(3), fields["rows"])
			assert.Contains(t, fields["sql"], "catalog_products")
		})
	}
}

func TestSQLLogger_TraceSkipsRenderingWhenQuiet(t *testing.T) {
	log, _ := observedSQLLogger(gormlogger.Warn, 0)

	rendered := false
	log.Trace(context.Background(), time.Now(), func() (string, int64) {
		rendered = true
		return "", 0
	}, nil)

	assert.False(t, rendered)
}

func TestSQLLogger_TraceCarriesContextIDs(t *testing.T) {
	log, recorded := observedSQLLogger(gormlogger.Info, 0)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, ShopIDKey, "blocks")
	ctx = context.WithValue(ctx, PlayerIDKey, "steve")

	log.Trace(ctx, time.Now(), statement, nil)

	require.Len(t, recorded.All(), 1)
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "blocks", fields["shop_id"])
	assert.Equal(t, "steve", fields["player_id"])
}

func TestSQLLogger_Messages(t *testing.T) {
	log, recorded := observedSQLLogger(gormlogger.Warn, 0)
	ctx := context.Background()

	log.Info(ctx, "opened %s", "gameshop.db")
	log.Warn(ctx, "pool at %d%%", 90)
	log.Error(ctx, "lost connection to %s", "postgres")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "pool at 90%", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "lost connection to postgres", entries[1].Message)
}

func TestSQLLogger_LogMode(t *testing.T) {
	log, recorded := observedSQLLogger(gormlogger.Silent, 0)

	loud := log.LogMode(gormlogger.Info)
	require.IsType(t, &SQLLogger{}, loud)
	assert.Equal(t, gormlogger.Silent, log.level)

	loud.Trace(context.Background(), time.Now(), statement, nil)
	log.Trace(context.Background(), time.Now(), statement, nil)
	assert.Len(t, recorded.All(), 1)
}

func TestNewSQLLogger_NilLogger(t *testing.T) {
	log := NewSQLLogger(nil, gormlogger.Info, 0)
	assert.NotPanics(t, func() {
		log.Trace(context.Background(), time.Now(), statement, errors.New("boom"))
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"fatal", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Warn},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MapGormLogLevel(tt.input))
		})
	}
}

var _ gormlogger.Interface = (*SQLLogger)(nil)
