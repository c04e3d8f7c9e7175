package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to path. The TUI owns stdout, so logs never go
// to the terminal.
func New(path, level string) (*logrus.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return NewWithWriter(f, level), f, nil
}

// NewWithWriter returns a logger writing to w, used by tests and the dev backend
func NewWithWriter(w io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Discard returns an entry that drops everything
func Discard() *logrus.Entry {
	return logrus.NewEntry(NewWithWriter(io.Discard, "panic"))
}

// Component tags log lines with the subsystem that produced them
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}
