package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// HlogAdapter implements hlog.FullLogger on top of slog so Hertz framework
// output shares the application's handler and format.
type HlogAdapter struct {
	l *slog.Logger
}

// NewHlogAdapter wraps l for use with hlog.SetLogger.
func NewHlogAdapter(l *slog.Logger) *HlogAdapter {
	return &HlogAdapter{l: l}
}

func (a *HlogAdapter) log(level slog.Level, v ...interface{}) {
	a.l.Log(context.Background(), level, fmt.Sprint(v...))
}

func (a *HlogAdapter) logf(level slog.Level, format string, v ...interface{}) {
	a.l.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

func (a *HlogAdapter) ctxLogf(ctx context.Context, level slog.Level, format string, v ...interface{}) {
	a.l.Log(ctx, level, fmt.Sprintf(format, v...))
}

func (a *HlogAdapter) Trace(v ...interface{})  { a.log(slog.LevelDebug, v...) }
func (a *HlogAdapter) Debug(v ...interface{})  { a.log(slog.LevelDebug, v...) }
func (a *HlogAdapter) Info(v ...interface{})   { a.log(slog.LevelInfo, v...) }
func (a *HlogAdapter) Notice(v ...interface{}) { a.log(slog.LevelInfo, v...) }
func (a *HlogAdapter) Warn(v ...interface{})   { a.log(slog.LevelWarn, v...) }
func (a *HlogAdapter) Error(v ...interface{})  { a.log(slog.LevelError, v...) }
func (a *HlogAdapter) Fatal(v ...interface{})  { a.log(slog.LevelError, v...) }

func (a *HlogAdapter) Tracef(format string, v ...interface{})  { a.logf(slog.LevelDebug, format, v...) }
func (a *HlogAdapter) Debugf(format string, v ...interface{})  { a.logf(slog.LevelDebug, format, v...) }
func (a *HlogAdapter) Infof(format string, v ...interface{})   { a.logf(slog.LevelInfo, format, v...) }
func (a *HlogAdapter) Noticef(format string, v ...interface{}) { a.logf(slog.LevelInfo, format, v...) }
func (a *HlogAdapter) Warnf(format string, v ...interface{})   { a.logf(slog.LevelWarn, format, v...) }
func (a *HlogAdapter) Errorf(format string, v ...interface{})  { a.logf(slog.LevelError, format, v...) }
func (a *HlogAdapter) Fatalf(format string, v ...interface{})  { a.logf(slog.LevelError, format, v...) }

func (a *HlogAdapter) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	a.ctxLogf(ctx, slog.LevelDebug, format, v...)
}
func (a *HlogAdapter) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	a.ctxLogf(ctx, slog.LevelDebug, format, v...)
}
func (a *HlogAdapter) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	a.ctxLogf(ctx, slog.LevelInfo, format, v...)
}
func (a *HlogAdapter) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	a.ctxLogf(ctx, slog.LevelInfo, format, v...)
}
func (a *HlogAdapter) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	a.ctxLogf(ctx, slog.LevelWarn, format, v...)
}
func (a *HlogAdapter) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	a.ctxLogf(ctx, slog.LevelError, format, v...)
}
func (a *HlogAdapter) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	a.ctxLogf(ctx, slog.LevelError, format, v...)
}

// SetLevel is a no-op; the slog handler owns the level.
func (a *HlogAdapter) SetLevel(level hlog.Level) {}

// SetOutput is a no-op; the slog handler owns the writer.
func (a *HlogAdapter) SetOutput(w io.Writer) {}
