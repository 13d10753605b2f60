package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

// DefaultGreeting is what the greeter answers on its root route.
const DefaultGreeting = "Hello Vaishu 🚀 Your Flask backend is running!"

// Config keeps runtime settings for both binaries.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Tasks    TasksConfig    `yaml:"tasks"`
	Report   ReportConfig   `yaml:"report"`
	Greeter  GreeterConfig  `yaml:"greeter"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"5000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-default:"*" env-separator:","`
}

type DatabaseConfig struct {
	// Path is a SQLite file path or DSN; its parent directory is created on start.
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"database/tasks.db"`
}

type TasksConfig struct {
	// StrictNotFound makes update and delete of a missing id answer 404
	// instead of a silent success.
	StrictNotFound bool `yaml:"strict_not_found" env:"TASKS_STRICT_NOT_FOUND" env-default:"false"`
}

type ReportConfig struct {
	Interval       time.Duration `yaml:"interval" env:"REPORT_INTERVAL" env-default:"24h"`
	DailyAt        string        `yaml:"daily_at" env:"REPORT_DAILY_AT"`
	TelegramToken  string        `yaml:"telegram_token" env:"TELEGRAM_TOKEN"`
	TelegramChatID int64         `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
}

type GreeterConfig struct {
	Greeting string `yaml:"greeting" env:"GREETING"`
}

// Load reads the optional CONFIG_PATH file and then the environment.
// Environment variables win over file values.
func Load() (*Config, error) {
	cfg := new(Config)

	var err error
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	if c.HTTP.Port == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}
	for _, origin := range c.HTTP.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin %q", origin)
		}
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Report.Interval < 0 {
		return fmt.Errorf("REPORT_INTERVAL must not be negative")
	}
	if (c.Report.TelegramToken == "") != (c.Report.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	if c.Greeter.Greeting == "" {
		c.Greeter.Greeting = DefaultGreeting
	}
	return nil
}

// TelegramEnabled reports whether summaries go to a Telegram chat.
func (c *Config) TelegramEnabled() bool {
	return c.Report.TelegramToken != "" && c.Report.TelegramChatID != 0
}
