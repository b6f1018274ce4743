// Package logging sets up the per-run log: one file named by the run start
// time, mirrored to the console.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// fileLayout is the time layout of log file names.
const fileLayout = "2006-01-02 15-04-05"

// FileName returns the log file name for a run started at t.
func FileName(t time.Time) string {
	return "log " + t.Format(fileLayout) + ".log"
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, err
	}
	if l > zapcore.ErrorLevel {
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level %q", s)
	}
	return l, nil
}

// Config describes the log of one run.
type Config struct {
	Level string
	// Dir receives the log file. It is created if absent.
	Dir   string
	Start time.Time
	// RunID is attached to every entry.
	RunID string
	// Console mirrors the log. Defaults to stderr.
	Console io.Writer
}

// Run is an open run log.
type Run struct {
	Logger *zap.Logger
	// Path is the log file.
	Path string
	file *os.File
}

// New opens the log file for cfg and returns a logger writing to it and to
// the console.
func New(cfg Config) (*Run, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}
	if cfg.Console == nil {
		cfg.Console = os.Stderr
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log folder: %w", err)
	}
	path := filepath.Join(cfg.Dir, FileName(cfg.Start))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(newEncoder(), zapcore.AddSync(f), level),
		zapcore.NewCore(newEncoder(), zapcore.Lock(zapcore.AddSync(cfg.Console)), level),
	)
	logger := zap.New(core)
	if cfg.RunID != "" {
		logger = logger.With(zap.String("run_id", cfg.RunID))
	}
	return &Run{Logger: logger, Path: path, file: f}, nil
}

// newEncoder creates the console encoder shared by the file and the terminal.
func newEncoder() zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encoderCfg)
}

// Close flushes the logger and closes the log file.
func (r *Run) Close() error {
	err := r.Logger.Sync()
	if err != nil && isStdoutSyncError(err) {
		err = nil
	}
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// isStdoutSyncError checks if error is harmless stdout/stderr sync error.
// On Linux, syncing stdout/stderr returns EINVAL or ENOTTY which are safe to ignore.
func isStdoutSyncError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EINVAL || errno == syscall.ENOTTY
	}
	return false
}
