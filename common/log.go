package common

import (
	"io"
	"os"
	"time"

	"github.com/jefurry/logrus"
	"github.com/jefurry/logrus/hooks/rotatelog"
)

// Klogger wraps a logrus.Logger so call sites depend on this package rather
// than the concrete logging library.
type Klogger struct {
	*logrus.Logger
}

func (k *Klogger) SetOutput(w io.Writer) {
	k.SetOut(w)
}

func (k *Klogger) SetPrefix(_ string) {}

var ProtocolParserLog *Klogger = &Klogger{logrus.New()}
var CLILog *Klogger = &Klogger{logrus.New()}

var loggers = []*Klogger{ProtocolParserLog, CLILog}

var logToFileFlag = false

// EnableFileLogging attaches a daily-rotated file hook to every named
// logger, writing under dir. Safe to call more than once.
func EnableFileLogging(dir string) {
	if logToFileFlag || dir == "" {
		return
	}
	logToFileFlag = true
	for _, l := range loggers {
		hook, err := rotatelog.NewHook(
			dir+"/mqttwire.log.%Y%m%d",
			rotatelog.WithMaxAge(time.Hour*24*7),
			rotatelog.WithRotationTime(time.Hour*24),
		)
		if err != nil {
			continue
		}
		l.Hooks.Add(hook)
	}
}

// SetVerbose toggles debug-level logging across every named logger.
func SetVerbose(verbose bool) {
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	for _, l := range loggers {
		l.SetLevel(level)
	}
}

// SetConsoleOutput points every named logger at stdout, or discards output
// when false.
func SetConsoleOutput(enabled bool) {
	for _, l := range loggers {
		if enabled {
			l.SetOut(os.Stdout)
		} else {
			l.SetOut(io.Discard)
		}
	}
}
