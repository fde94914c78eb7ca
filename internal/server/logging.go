package server

import "github.com/sirupsen/logrus"

// NewLogger builds the process-wide structured logger. One instance is
// created in cmd/miniredis and threaded down through Engine to every
// component that logs (spec §9: no other process-wide singletons).
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}
