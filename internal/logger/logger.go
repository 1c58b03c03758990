// Package logger builds the process logger and the pipeline's structured
// log helpers.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New creates a logger writing to out. Production logs are JSON; every other
// environment gets timestamped text, colored only when out is a terminal.
func New(logLevel, environment string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		return log
	}
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}
