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

func newGormObserved(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("bogus"))
}

func TestGormLoggerTrace(t *testing.T) {
	fc := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, logs := newGormObserved(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), fc, nil)
		assert.Empty(t, logs.All())
	})

	t.Run("error is logged with sql", func(t *testing.T) {
		gl, logs := newGormObserved(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), fc, errors.New("boom"))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
	})

	t.Run("record not found ignored by default", func(t *testing.T) {
		gl, logs := newGormObserved(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
		assert.Empty(t, logs.All())
	})

	t.Run("record not found logged when not ignored", func(t *testing.T) {
		gl, logs := newGormObserved(gormlogger.Error, WithIgnoreRecordNotFoundError(false))
		gl.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
		assert.Len(t, logs.All(), 1)
	})

	t.Run("slow query warns", func(t *testing.T) {
		gl, logs := newGormObserved(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("site id from context is attached", func(t *testing.T) {
		gl, logs := newGormObserved(gormlogger.Error)
		ctx := context.WithValue(context.Background(), SiteIDKey, "site-1")
		gl.Trace(ctx, time.Now(), fc, errors.New("boom"))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "site-1", entries[0].ContextMap()["site_id"])
	})
}

func TestGormLoggerLogMode(t *testing.T) {
	gl, _ := newGormObserved(gormlogger.Warn)
	child := gl.LogMode(gormlogger.Silent)
	require.NotSame(t, gl, child)

	// Original keeps its level.
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
}
