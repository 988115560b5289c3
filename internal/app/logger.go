package app

import (
	"log/slog"
	"os"
)

// NewLogger returns a slog.Logger configured from the runtime config. JSON
// output in production, text elsewhere unless overridden.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && (cfg.LogFormat == "json" || (cfg.LogFormat != "pretty" && cfg.IsProduction())) {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
