package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// debugLogFile receives all log output when --debug is given.
const debugLogFile = "output.log"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// configureLogging sets the global logrus level and formatter. With debug set,
// output goes to logPath instead of stdout; the returned closer closes that file.
func configureLogging(level string, debug bool, logPath string) (io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if !debug {
		logrus.SetOutput(os.Stdout)
		return nopCloser{}, nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	logrus.SetOutput(f)
	return f, nil
}
