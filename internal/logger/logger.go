package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adicipta/procure-api/internal/config"
)

// NewLogger builds a zap logger from the logging configuration.
// JSON output is used when the format asks for it or the app runs in
// production; otherwise a colored console encoder is used.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}

// WithRequest returns a logger annotated with request correlation fields
func WithRequest(log *zap.Logger, requestID, method, path string) *zap.Logger {
	return log.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	)
}

// WithActor returns a logger annotated with the acting user
func WithActor(log *zap.Logger, actorID, actorName string) *zap.Logger {
	return log.With(
		zap.String("actor_id", actorID),
		zap.String("actor_name", actorName),
	)
}
