package log

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// Global is the process-wide logger. It logs at info level to stderr until
// Configure replaces its settings.
var Global = New(Config{})

type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New builds a logger. When File is set, output is written to stderr and to
// a rotating file.
func New(cfg Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
	}
	logger.SetOutput(out)
	return logger
}

// Configure applies cfg to Global.
func Configure(cfg Config) error {
	level, err := logrus.ParseLevel(orDefault(cfg.Level, "info"))
	if err != nil {
		return err
	}
	fresh := New(cfg)
	Global.SetLevel(level)
	Global.SetOutput(fresh.Out)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
