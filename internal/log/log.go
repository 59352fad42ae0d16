// Package log provides context-aware logging for wtp.
//
// Console output is plain text on stderr: user messages via Printf/Println,
// external commands and debug key=val lines when verbose. Every leveled entry
// is also sent to a zap core, which is a no-op until AttachFile wires a
// rotating JSON log file.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey struct{}

// FileConfig configures the rotating JSON log file.
type FileConfig struct {
	Path       string
	Level      string // debug, info, warn, error (default info)
	MaxSizeMB  int    // default 10
	MaxBackups int    // default 3
}

// Logger provides output, verbose command logging and structured file logging.
type Logger struct {
	out     io.Writer
	verbose bool
	quiet   bool

	mu  sync.Mutex
	zap *zap.Logger
}

// New creates a new logger. quiet suppresses all console output, including verbose.
func New(out io.Writer, verbose, quiet bool) *Logger {
	return &Logger{out: out, verbose: verbose, quiet: quiet, zap: zap.NewNop()}
}

// AttachFile tees leveled log entries into a rotating JSON file.
// The returned func flushes and closes the file.
func (l *Logger) AttachFile(cfg FileConfig) (func() error, error) {
	if cfg.Path == "" {
		return func() error { return nil }, nil
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(fileWriter), level)

	l.mu.Lock()
	l.zap = zap.New(core)
	z := l.zap
	l.mu.Unlock()

	return func() error {
		_ = z.Sync()
		return fileWriter.Close()
	}, nil
}

// WithOutput returns a logger with the same settings and log file that writes
// console output to w.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	return &Logger{out: w, verbose: l.verbose, quiet: l.quiet, zap: l.logger()}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return New(io.Discard, false, false)
}

// Printf writes formatted output unless quiet.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output unless quiet.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Command logs an external command execution and returns a func that
// records how long it took. Only prints when verbose.
func (l *Logger) Command(dir, name string, args ...string) func(time.Duration) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	if dir != "" {
		line = "[" + dir + "] $ " + line
	} else {
		line = "$ " + line
	}

	return func(d time.Duration) {
		l.logger().Debug("exec", zap.String("dir", dir), zap.String("cmd", name), zap.Strings("args", args), zap.Duration("took", d))
		if !l.IsVerbose() {
			return
		}
		fmt.Fprintf(l.out, "%s (%s)\n", line, d.Round(time.Millisecond))
	}
}

// Debug logs a message with key/value pairs when verbose.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.logger().Debug(msg, fields(keyvals)...)
	if !l.IsVerbose() {
		return
	}
	fmt.Fprintln(l.out, formatLine(msg, keyvals))
}

// Info records a message in the log file only.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.logger().Info(msg, fields(keyvals)...)
}

// Warn logs a warning. Printed unless quiet.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.logger().Warn(msg, fields(keyvals)...)
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, "Warning: "+formatLine(msg, keyvals))
}

// Error records an error in the log file only; callers print user-facing errors.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.logger().Error(msg, fields(keyvals)...)
}

// IsVerbose returns true if verbose output is enabled and not silenced by quiet.
func (l *Logger) IsVerbose() bool {
	return l.verbose && !l.quiet
}

// Writer returns the underlying writer.
func (l *Logger) Writer() io.Writer {
	return l.out
}

func (l *Logger) logger() *zap.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zap
}

func formatLine(msg string, keyvals []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	return b.String()
}

func fields(keyvals []any) []zap.Field {
	out := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		out = append(out, zap.Any(fmt.Sprint(keyvals[i]), keyvals[i+1]))
	}
	return out
}
