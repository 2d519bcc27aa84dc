package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/slicer/internal/config"
	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/logging"
)

// logFileWriter holds the open log file so CloseLogFile can release it.
var (
	logFileWriter   io.WriteCloser //nolint:gochecknoglobals // Needed for cleanup
	logFileWriterMu sync.Mutex     //nolint:gochecknoglobals // Protects logFileWriter
)

// zerologGlobalMu protects writes to the zerolog global logger.
var zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // Protects zerolog global

// InitLogger creates the CLI logger.
//
// Levels: verbose gives debug, quiet gives warn, otherwise info.
// On a terminal without NO_COLOR the console gets human-readable lines;
// otherwise JSON goes to stderr. Every entry is also appended to
// ~/.slicer/logs/slicer.log (SLICER_HOME overrides the home) with rotation
// and secret redaction. If that file cannot be opened, logging continues on
// the console only.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	console := selectOutput()

	writer := console
	fileWriter, err := createLogFileWriter()
	if err == nil {
		setLogFileWriter(fileWriter)
		writer = zerolog.MultiLevelWriter(console, fileWriter)
	}

	logger := buildLogger(verbose, quiet, writer)
	if err != nil {
		logger.Debug().Err(err).Msg("log file unavailable, logging to console only")
	}
	setGlobalLogger(logger)
	return logger
}

// InitLoggerWithWriter creates the CLI logger over a custom writer.
// It is primarily intended for tests.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	logger := buildLogger(verbose, quiet, w)
	setGlobalLogger(logger)
	return logger
}

func buildLogger(verbose, quiet bool, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(selectLevel(verbose, quiet)).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().Logger()
}

// setGlobalLogger points the zerolog/log package logger at ours so code that
// logs through log.Debug() and friends shares the configuration.
func setGlobalLogger(cliLogger zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = cliLogger
}

func setLogFileWriter(w io.WriteCloser) {
	logFileWriterMu.Lock()
	defer logFileWriterMu.Unlock()
	if logFileWriter != nil {
		_ = logFileWriter.Close()
	}
	logFileWriter = w
}

// CloseLogFile closes the log file writer if it was opened.
func CloseLogFile() {
	logFileWriterMu.Lock()
	defer logFileWriterMu.Unlock()
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel determines the log level from the flags. Verbose wins.
func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// selectOutput picks the console writer from terminal capabilities.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// filteringWriteCloser redacts secrets before they reach the log file.
type filteringWriteCloser struct {
	filter *logging.FilteringWriter
	closer io.Closer
}

func (fwc *filteringWriteCloser) Write(p []byte) (n int, err error) {
	return fwc.filter.Write(p)
}

func (fwc *filteringWriteCloser) Close() error {
	return fwc.closer.Close()
}

// createLogFileWriter opens the rotating CLI log file.
func createLogFileWriter() (io.WriteCloser, error) {
	logPath, err := LogFilePath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}

	return &filteringWriteCloser{
		filter: logging.NewFilteringWriter(lj),
		closer: lj,
	}, nil
}

// LogFilePath returns the path to the CLI log file.
func LogFilePath() (string, error) {
	dir, err := config.LogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.CLILogFileName), nil
}
