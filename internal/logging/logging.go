// Package logging builds the logfmt loggers used across the module.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// New returns a logfmt logger writing to w that drops records below lvl.
// Valid levels are debug, info, warn and error.
func New(w io.Writer, lvl string) (log.Logger, error) {
	opt, err := levelOption(lvl)
	if err != nil {
		return nil, err
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

func levelOption(lvl string) (level.Option, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug(), nil
	case "info", "":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, fmt.Errorf("unknown log level: %s", lvl)
}

// Subsystem tags logger with the component name.
func Subsystem(logger log.Logger, name string) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return log.With(logger, "subsys", name)
}
