package logger

import "go.uber.org/zap"

// New builds the application logger. Production mode uses JSON output with
// sampling; development mode uses the human-readable console encoder.
func New(isProduction bool) (*zap.Logger, error) {
	if isProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
