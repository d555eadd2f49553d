package utils

import "go.uber.org/zap"

// NewLogger builds the process logger. Debug mode uses the console encoder
// at debug level with warn-level stacktraces disabled. Production mode is
// zap's standard JSON config at info level.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
		return cfg.Build()
	}
	return zap.NewProduction()
}
