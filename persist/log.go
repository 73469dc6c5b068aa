package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Logger writing to a single on-disk file, adding the
// startup/shutdown banner lines and a Critical helper that every long-running
// component of the wallet core uses to report unrecoverable invariant
// violations.
type Logger struct {
	*logrus.Logger
	file *os.File
}

// NewFileLogger returns a Logger that appends to the file at filename,
// creating it and any parent directory if necessary. When verbose is false,
// Debug-level entries are discarded.
func NewFileLogger(appName, appVersion, filename string, verbose bool) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(file)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: time.RFC3339,
	})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	l := &Logger{Logger: logger, file: file}
	l.Println("STARTUP:", appName, appVersion, "starting up")
	return l, nil
}

// Critical logs a message at error level and then panics, used for
// conditions that indicate developer error or on-disk corruption from which
// the caller cannot safely continue.
func (l *Logger) Critical(v ...interface{}) {
	msg := fmt.Sprintln(v...)
	l.Errorln("CRITICAL:", msg)
	panic("critical error: " + msg)
}

// Close writes the shutdown banner line and closes the underlying file.
func (l *Logger) Close() error {
	l.Println("SHUTDOWN: logging has terminated")
	return l.file.Close()
}
