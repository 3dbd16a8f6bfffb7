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

func traceFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) {
		return sql, rows
	}
}

func TestGormLoggerTrace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)

	ctx := context.Background()
	gl.Trace(ctx, time.Now(), traceFn("SELECT * FROM customers", 3), nil)

	entry := findEntry(recorded.All(), "SQL Query")
	require.NotNil(t, entry)
	fields := entry.ContextMap()
	assert.Equal(t, "SELECT * FROM customers", fields["sql"])
	assert.Equal(t, int64(3), fields["rows"])
}

func TestGormLoggerTrace_Error(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), traceFn("UPDATE products", 0), errors.New("constraint violation"))

	entry := findEntry(recorded.All(), "SQL Error")
	require.NotNil(t, entry)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
}

func TestGormLoggerTrace_SkipsRecordNotFound(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), traceFn("SELECT * FROM invoices", 0), gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All(), "lookups that miss are a normal outcome")
}

func TestGormLoggerTrace_SlowQuery(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)

	begin := time.Now().Add(-time.Second)
	gl.Trace(context.Background(), begin, traceFn("SELECT * FROM invoice_details", 500), nil)

	all := recorded.All()
	require.Len(t, all, 1)
	assert.Equal(t, zapcore.WarnLevel, all[0].Level)
	assert.Contains(t, all[0].Message, "SLOW SQL")
}

func TestGormLoggerTrace_Silent(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), traceFn("SELECT 1", 1), nil)

	assert.Empty(t, recorded.All())
}

func TestGormLoggerTrace_RequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)

	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-42")
	gl.Trace(ctx, time.Now(), traceFn("SELECT * FROM users", 1), nil)

	entry := findEntry(recorded.All(), "SQL Query")
	require.NotNil(t, entry)
	assert.Equal(t, "req-42", entry.ContextMap()["request_id"])
}

func TestMapGormLogLevelDefaults(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}

func TestGormLoggerLogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)
	quiet := gl.LogMode(gormlogger.Silent)

	assert.NotSame(t, gl, quiet)
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
}
