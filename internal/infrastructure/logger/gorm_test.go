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
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	g := NewGormLogger(zap.NewNop(), gormlogger.Info, 0)
	other := g.LogMode(gormlogger.Error).(*GormLogger)

	assert.Equal(t, gormlogger.Info, g.level)
	assert.Equal(t, gormlogger.Error, other.level)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("error is logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		g := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

		g.Trace(context.Background(), time.Now(), sqlFn("INSERT INTO transactions", 0), errors.New("boom"))

		entries := recorded.FilterMessage("query failed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "INSERT INTO transactions", entries[0].ContextMap()["sql"])
	})

	t.Run("record not found is skipped", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		g := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

		g.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 0), gorm.ErrRecordNotFound)

		assert.Zero(t, recorded.Len())
	})

	t.Run("slow query warns", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		g := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)

		g.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn("SELECT 1", 1), nil)

		assert.Equal(t, 1, recorded.FilterMessage("slow query").Len())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		g := NewGormLogger(zap.New(core), gormlogger.Silent, time.Millisecond)

		g.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn("SELECT 1", 1), errors.New("x"))

		assert.Zero(t, recorded.Len())
	})

	t.Run("request id attached", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		g := NewGormLogger(zap.New(core), gormlogger.Info, 0)
		ctx := WithRequestID(context.Background(), "req-9")

		g.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)

		entries := recorded.FilterMessage("query").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	})
}
