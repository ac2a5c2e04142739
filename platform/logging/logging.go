package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Init configures the process-wide logger. LOG_LEVEL accepts the usual logrus
// names; anything unparseable falls back to info.
func Init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
