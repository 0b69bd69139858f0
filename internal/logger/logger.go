// Package logger holds the process-wide zap logger.
package logger

import "go.uber.org/zap"

var log *zap.Logger

// Init configures the global logger. Verbose selects the development
// config with debug output; otherwise the production JSON config is used.
func Init(verbose bool) error {
	if log != nil {
		return nil
	}
	var err error
	if verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	return err
}

// L returns the global logger. Before Init it returns a no-op logger so
// library code and tests can log unconditionally.
func L() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
