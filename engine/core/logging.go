package core

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportCaller:    true,
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					Prefix:          "Epifaneia 🔭 ",
				})
				l.SetLevel(log.DebugLevel)
				// The wrappers below add a frame to every call.
				l.SetCallerOffset(1)
				singleton = &logger{l}
			})
	}
	return singleton
}

// ParseLogLevel accepts debug, info, warn, error and fatal in any case.
func ParseLogLevel(level string) (log.Level, error) {
	return log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
}

// SetLogLevel changes the minimum level of the process logger.
func SetLogLevel(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}
