package config

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/simp-lee/logger"
)

// SetupLogger builds the application logger from cfg and installs it as the
// slog default. The caller must Close the returned logger.
func SetupLogger(cfg *LogConfig) (*logger.Logger, error) {
	return newLogger(cfg, nil)
}

// newLogger is SetupLogger with an optional console writer override.
func newLogger(cfg *LogConfig, console io.Writer) (*logger.Logger, error) {
	if cfg == nil {
		return nil, errors.New("log config is nil")
	}

	opts := loggerOptions(cfg)
	if console != nil {
		opts = append(opts, logger.WithConsoleWriter(console))
	}

	log, err := logger.New(opts...)
	if err != nil {
		return nil, err
	}
	log.SetDefault()
	return log, nil
}

// loggerOptions translates cfg into logger options. Context attributes such
// as request_id are always attached through the context middleware. File
// output and its rotation settings are only added when a path is configured.
func loggerOptions(cfg *LogConfig) []logger.Option {
	format := parseFormat(cfg.Format)

	color := true
	if cfg.Color != nil {
		color = *cfg.Color
	}

	opts := []logger.Option{
		logger.WithLevel(parseLevel(cfg.Level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleFormat(format),
		logger.WithConsoleColor(color),
	}

	if strings.TrimSpace(cfg.FilePath) == "" {
		return opts
	}
	opts = append(opts,
		logger.WithFilePath(strings.TrimSpace(cfg.FilePath)),
		logger.WithFileFormat(format),
	)
	if cfg.MaxSizeMB > 0 {
		opts = append(opts, logger.WithMaxSizeMB(cfg.MaxSizeMB))
	}
	if cfg.RetentionDays > 0 {
		opts = append(opts, logger.WithRetentionDays(cfg.RetentionDays))
	}
	if cfg.MaxBackups > 0 {
		opts = append(opts, logger.WithMaxBackups(cfg.MaxBackups))
	}
	if cfg.CompressRotated != nil {
		opts = append(opts, logger.WithCompressRotated(*cfg.CompressRotated))
	}
	return opts
}

// parseFormat maps a configured format name to an output format.
// Unknown names fall back to the library's custom layout.
func parseFormat(s string) logger.OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return logger.FormatText
	case "json":
		return logger.FormatJSON
	default:
		return logger.FormatCustom
	}
}

// parseLevel converts a level name to a slog.Level, defaulting to info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
