// Package logging routes logrus output to a rotated file. The terminal is owned
// by the form, so nothing is written to stderr once Init succeeds.
package logging

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// Init points the standard logger at path. The returned closer flushes and
// releases the file.
func Init(path, level string) (io.Closer, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}

	parsed, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	log.SetOutput(out)
	log.SetLevel(parsed)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	return out, nil
}

// ParseLevel accepts logrus level names; empty means info.
func ParseLevel(level string) (log.Level, error) {
	if level == "" {
		return log.InfoLevel, nil
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return parsed, nil
}
