package logging

import (
	"io"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes a size rotated log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Output returns the writer log providers should use: a lumberjack file when
// cfg.Path is set, stdout otherwise. When tee is true the file output is
// mirrored to stdout.
func Output(cfg FileConfig, tee bool) io.Writer {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return os.Stdout
	}
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    positiveOr(cfg.MaxSizeMB, 100),
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	if tee {
		return io.MultiWriter(os.Stdout, file)
	}
	return file
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
