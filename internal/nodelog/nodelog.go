// Package nodelog provides the per-node logger: stdout plus a truncated,
// append-only log file, the way original_source's node_logger.py does.
package nodelog

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a logger for node id, truncating logFile on start (spec §6:
// "Truncated at process start"). If logFile is empty, only stdout logging
// is configured.
func New(id int, logFile string) (*logrus.Entry, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(os.Stdout)

	if logFile != "" {
		f, err := os.Create(logFile) // O_TRUNC|O_CREATE, matches "erase on start"
		if err != nil {
			return nil, fmt.Errorf("nodelog: failed to create log file %s: %w", logFile, err)
		}
		f.Close()

		appendFile, err := os.OpenFile(logFile, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("nodelog: failed to open log file %s: %w", logFile, err)
		}
		logger.AddHook(&fileHook{file: appendFile, formatter: logger.Formatter})
	}

	return logger.WithField("node_id", id), nil
}

// fileHook mirrors every log record to an append-only file, flushing after
// each write the way node_logger.py's `open(...).write(...)` does.
type fileHook struct {
	file      *os.File
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.file.Write(line)
	return err
}
