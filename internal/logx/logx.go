// Package logx centralizes logrus construction so every package
// receives a logrus.FieldLogger through its constructor rather than
// reaching for a global, the same dependency-injected logging shape
// the teacher threads through its own agent binaries.
package logx

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus.Logger configured for this project's default
// output: JSON on stdout, info level, so a deployed wmbusd's logs are
// consumable by the same log pipeline as the rest of a fleet.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// WithTelegram returns a FieldLogger tagged with telegram identity
// fields (device ID and link mode).
func WithTelegram(log logrus.FieldLogger, deviceID string, linkMode string) logrus.FieldLogger {
	return log.WithFields(logrus.Fields{
		"device_id": deviceID,
		"link_mode": linkMode,
	})
}
