package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the name of the log file written inside Options.Dir.
const LogFileName = "server.log"

// Options configures the root logger.
type Options struct {
	// Dir is the directory for LogFileName. Empty disables file output.
	Dir string

	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Console receives human-readable output. Nil means os.Stderr.
	Console io.Writer
}

// Logger provides leveled logging for sectionforge components.
// Every entry carries the process run id and the component name.
//
// Console output is human-readable; the log file gets one JSON object per line.
type Logger struct {
	component string
	base      *zap.Logger
	sugar     *zap.SugaredLogger
	file      *os.File
	logPath   string
	closeOnce *sync.Once
}

var (
	// Global run ID for the current process
	runID     string
	runIDOnce sync.Once
)

// getRunID returns or creates the run ID for this process
func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

// New creates the root logger.
//
// If the log directory cannot be created or the log file cannot be opened,
// it returns a console-only logger along with the error, so callers can
// warn and keep going.
func New(opts Options) (*Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(console), level)

	l := &Logger{closeOnce: &sync.Once{}}

	var fileErr error
	cores := []zapcore.Core{consoleCore}
	if opts.Dir != "" {
		file, path, err := openLogFile(opts.Dir)
		if err != nil {
			fileErr = err
		} else {
			l.file = file
			l.logPath = path
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), level))
		}
	}

	l.base = zap.New(zapcore.NewTee(cores...)).With(zap.String("run_id", getRunID()))
	l.sugar = l.base.Sugar()

	if fileErr != nil {
		l.Warnf("file logging disabled: %v", fileErr)
		return l, fileErr
	}
	return l, nil
}

// openLogFile ensures dir exists and opens the log file in append mode.
func openLogFile(dir string) (*os.File, string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, LogFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}
	return file, path, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	base := zap.NewNop()
	return &Logger{base: base, sugar: base.Sugar(), closeOnce: &sync.Once{}}
}

// Named returns a child logger tagged with component. The child shares the
// parent's outputs; closing either closes both.
func (l *Logger) Named(component string) *Logger {
	child := *l
	child.component = component
	child.base = l.base.With(zap.String("component", component))
	child.sugar = child.base.Sugar()
	return &child
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Printf logs an info-level message
func (l *Logger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Zap exposes the structured logger for callers that log with fields.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// Component returns the component name, empty for the root logger.
func (l *Logger) Component() string {
	return l.component
}

// RunID returns the process run id attached to every entry.
func (l *Logger) RunID() string {
	return getRunID()
}

// LogPath returns the path to the log file, empty when logging to console only.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close flushes buffered entries and closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		_ = l.base.Sync()
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
