package folio

import "go.uber.org/zap"

// NewLogger builds the application logger for env: JSON in production, a
// no-op in tests, console output otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "test":
		return zap.NewNop(), nil
	default:
		return zap.NewDevelopment()
	}
}
