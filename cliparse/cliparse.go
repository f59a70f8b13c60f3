package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Port          int           `env:"PORT" envDefault:"3318"`
	APIBaseURL    string        `env:"SERVEQREW_API_URL" envDefault:"https://serveqrew.org"`
	PageURL       string        `env:"SERVEQREW_PAGE_URL" envDefault:"https://serveqrew.org/"`
	StoreType     string        `env:"STORE_TYPE" envDefault:"sqlite"`
	DatabaseURL   string        `env:"DATABASE_URL" envDefault:"file:serveqrew.db"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RequireCode   bool          `env:"REQUIRE_CODE"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	Clipboard     string        `env:"CLIPBOARD" envDefault:"system"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"text"`

	// Optional waitlist submission at startup
	JoinName  string `env:"JOIN_NAME"`
	JoinEmail string `env:"JOIN_EMAIL"`
	JoinBrand string `env:"JOIN_BRAND"`
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// A missing file is not an error; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ParseFlags reads environment defaults and then applies CLI flags.
// CLI flags take precedence over environment variables.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("serveqrew-sync", flag.ContinueOnError)

	// Network config
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Local state API port")
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "ServeQrew API base URL")
	fs.StringVar(&cfg.PageURL, "u", cfg.PageURL, "Page URL the session is resolved from")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "Per-request timeout")

	// Persistence
	fs.StringVar(&cfg.StoreType, "t", cfg.StoreType, "Store type (memory, sqlite, postgres or redis)")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address (host:port)")

	// Behaviour
	fs.BoolVar(&cfg.RequireCode, "require-code", cfg.RequireCode, "Require a code in the page URL")
	fs.StringVar(&cfg.Clipboard, "clipboard", cfg.Clipboard, "Clipboard backend (system or memory)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")

	// Join at startup
	fs.StringVar(&cfg.JoinName, "join-name", cfg.JoinName, "Join the waitlist with this full name")
	fs.StringVar(&cfg.JoinEmail, "join-email", cfg.JoinEmail, "Join the waitlist with this email")
	fs.StringVar(&cfg.JoinBrand, "join-brand", cfg.JoinBrand, "Optional brand name for the join")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("timeout must be positive")
	}

	switch c.StoreType {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("redis address required (use -redis or REDIS_ADDR env)")
		}
	default:
		return fmt.Errorf("unsupported store type %q", c.StoreType)
	}

	switch c.Clipboard {
	case "system", "memory":
	default:
		return fmt.Errorf("unsupported clipboard %q", c.Clipboard)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}

	if (c.JoinName == "") != (c.JoinEmail == "") {
		return errors.New("join-name and join-email must be given together")
	}
	return nil
}

// Level returns LogLevel as a slog level
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// WantsJoin reports whether a waitlist submission was requested at startup
func (c Config) WantsJoin() bool {
	return c.JoinName != "" && c.JoinEmail != ""
}
