package quizbuilder

import (
	"io"

	"github.com/sirupsen/logrus"
)

// logger is shared by the package. Front ends adjust it with SetVerbose and SetLogOutput.
var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logger returns the package logger so front ends can log through the same sink.
func Logger() *logrus.Logger {
	return logger
}

// SetVerbose sets the global verbose mode
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	logger.SetLevel(logrus.InfoLevel)
}

// SetLogOutput redirects package logging, e.g. to io.Discard in tests.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// VerboseLog logs only when verbose mode is enabled
func VerboseLog(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}
