package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Listing  ListingConfig  `koanf:"listing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// ListingConfig tunes the home feed and posting rules.
type ListingConfig struct {
	PageSize         int      `koanf:"page_size"`
	PromotedEvery    int      `koanf:"promoted_every"`
	AllCategories    []string `koanf:"all_categories"`
	DailyPostLimit   int      `koanf:"daily_post_limit"`
	PlaceholderImage string   `koanf:"placeholder_image"`
}

// Listing defaults applied by Validate when a field is left at zero.
const (
	DefaultPageSize       = 15
	DefaultPromotedEvery  = 5
	DefaultDailyPostLimit = 3
)

// DefaultAllCategories are the category values that mean "no category filter".
var DefaultAllCategories = []string{"all", "Все"}

// Load reads the YAML file at configPath, overlays APP__ environment
// variables and validates the result. "__" separates levels and single
// underscores stay in the key, so APP__LISTING__DAILY_POST_LIMIT=5 sets
// listing.daily_post_limit.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	if err := k.Load(env.Provider("APP__", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "APP__")), "__", ".")
}

// Validate normalizes c in place and reports the first invalid setting.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Database.validate(c.Server.Mode); err != nil {
		return err
	}
	if err := c.Log.validate(); err != nil {
		return err
	}
	return c.Listing.validate()
}

var (
	serverModes = []string{gin.DebugMode, gin.ReleaseMode, gin.TestMode}
	sslModes    = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	tlsSSLModes = []string{"require", "verify-ca", "verify-full"}
	logLevels   = []string{"debug", "info", "warn", "error"}
	logFormats  = []string{"text", "json"}
	dbDrivers   = []string{"sqlite", "postgres"}
)

// oneOf trims *v (and lowercases it when fold is set) and checks it against
// allowed.
func oneOf(key string, v *string, fold bool, allowed []string) error {
	norm := strings.TrimSpace(*v)
	if fold {
		norm = strings.ToLower(norm)
	}
	if !slices.Contains(allowed, norm) {
		return fmt.Errorf("invalid %s %q: must be one of %q", key, *v, allowed)
	}
	*v = norm
	return nil
}

func required(key string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return fmt.Errorf("%s is required", key)
	}
	return nil
}

func validPort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s %d: must be between 1 and 65535", key, port)
	}
	return nil
}

// optionalDuration trims *v; blank means unset, anything else must be a
// positive Go duration.
func optionalDuration(key string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, *v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", key, *v)
	}
	return nil
}

func (s *ServerConfig) validate() error {
	if err := oneOf("server.mode", &s.Mode, false, serverModes); err != nil {
		return err
	}
	if err := validPort("server.port", s.Port); err != nil {
		return err
	}
	if err := required("server.host", &s.Host); err != nil {
		return err
	}
	if err := optionalDuration("server.timeout", &s.Timeout); err != nil {
		return err
	}
	if !s.RateLimit.Enabled {
		return nil
	}
	if s.RateLimit.RPS <= 0 {
		return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", s.RateLimit.RPS)
	}
	if s.RateLimit.Burst <= 0 {
		return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", s.RateLimit.Burst)
	}
	return nil
}

func (d *DatabaseConfig) validate(mode string) error {
	if err := oneOf("database.driver", &d.Driver, false, dbDrivers); err != nil {
		return err
	}
	switch d.Driver {
	case "sqlite":
		if err := required("database.sqlite.path", &d.SQLite.Path); err != nil {
			return err
		}
	case "postgres":
		if err := d.Postgres.validate(mode); err != nil {
			return err
		}
	}
	return optionalDuration("database.pool.conn_max_lifetime", &d.Pool.ConnMaxLifetime)
}

func (p *PostgresConfig) validate(mode string) error {
	if err := required("database.postgres.host", &p.Host); err != nil {
		return err
	}
	if err := validPort("database.postgres.port", p.Port); err != nil {
		return err
	}
	if err := required("database.postgres.user", &p.User); err != nil {
		return err
	}
	if err := required("database.postgres.dbname", &p.DBName); err != nil {
		return err
	}
	if err := oneOf("database.postgres.sslmode", &p.SSLMode, false, sslModes); err != nil {
		return err
	}
	// Release mode requires TLS.
	if mode == gin.ReleaseMode && !slices.Contains(tlsSSLModes, p.SSLMode) {
		return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q", p.SSLMode, mode, tlsSSLModes)
	}
	return nil
}

func (l *LogConfig) validate() error {
	if err := oneOf("log.level", &l.Level, true, logLevels); err != nil {
		return err
	}
	return oneOf("log.format", &l.Format, true, logFormats)
}

func (l *ListingConfig) validate() error {
	if l.PageSize < 0 {
		return fmt.Errorf("invalid listing.page_size %d: must not be negative", l.PageSize)
	}
	if l.PageSize == 0 {
		l.PageSize = DefaultPageSize
	}
	if l.PromotedEvery < 0 {
		return fmt.Errorf("invalid listing.promoted_every %d: must not be negative", l.PromotedEvery)
	}
	if l.PromotedEvery == 0 {
		l.PromotedEvery = DefaultPromotedEvery
	}
	if l.DailyPostLimit < 0 {
		return fmt.Errorf("invalid listing.daily_post_limit %d: must not be negative", l.DailyPostLimit)
	}
	if l.DailyPostLimit == 0 {
		l.DailyPostLimit = DefaultDailyPostLimit
	}

	categories := make([]string, 0, len(l.AllCategories))
	for idx, c := range l.AllCategories {
		c = strings.TrimSpace(c)
		if c == "" {
			return fmt.Errorf("listing.all_categories[%d] cannot be empty", idx)
		}
		categories = append(categories, c)
	}
	if len(categories) == 0 {
		categories = slices.Clone(DefaultAllCategories)
	}
	l.AllCategories = categories
	l.PlaceholderImage = strings.TrimSpace(l.PlaceholderImage)

	return nil
}
