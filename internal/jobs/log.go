package jobs

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp layout of every job log line.
const TimeLayout = "2006-01-02 15:04:05"

// Log writes "<timestamp> [run=<id>] <message>" lines to an append-only file.
// When echo is enabled, info lines are mirrored to stdout and error lines to
// stderr.
type Log struct {
	logger *zap.Logger
	runID  string
	close  func()
}

// OpenLog opens (creating if needed) the log file at path for appending.
func OpenLog(path, runID string, echo bool) (*Log, error) {
	file, closeFile, err := zap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job log %s: %w", path, err)
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "ts",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		ConsoleSeparator: " ",
	})

	cores := []zapcore.Core{zapcore.NewCore(encoder, file, zapcore.InfoLevel)}
	if echo {
		below := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapcore.InfoLevel && l < zapcore.ErrorLevel
		})
		cores = append(cores,
			zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), below),
			zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapcore.ErrorLevel),
		)
	}

	return &Log{
		logger: zap.New(zapcore.NewTee(cores...)),
		runID:  runID,
		close:  closeFile,
	}, nil
}

// RunID returns the id stamped on every line of this log.
func (l *Log) RunID() string {
	return l.runID
}

func (l *Log) Infof(format string, args ...interface{}) {
	l.logger.Info(l.line(format, args...))
}

func (l *Log) Errorf(format string, args ...interface{}) {
	l.logger.Error(l.line(format, args...))
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	err := l.logger.Sync()
	l.close()
	return err
}

func (l *Log) line(format string, args ...interface{}) string {
	return fmt.Sprintf("[run=%s] ", l.runID) + fmt.Sprintf(format, args...)
}
