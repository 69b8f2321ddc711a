// Package config loads process configuration from the environment and an
// optional .env file, and sets up the global logger.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/edusuite/engine/payroll"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config is the resolved server configuration.
type Config struct {
	Port               int
	DBPath             string
	LogLevel           string
	LogFormat          string // "human" for a console writer, JSON otherwise
	PayrollWorkers     int
	PayrollPayDay      int
	PayrollErrorPolicy payroll.ErrorPolicy
	SchedulerEnabled   bool
	SchedulerInterval  time.Duration
	CORSAllowedOrigins []string
	DemoScenarios      bool // mounts /api/scenarios, which wipes the database
}

// Load reads configuration. A .env file in the working directory is loaded
// first if it exists; real environment variables win over it.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit .env path. A missing file is not an error.
func LoadFrom(dotEnvPath string) (Config, error) {
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return Config{}, fmt.Errorf("config.godotenv(%s): %w", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config.os.Stat(%s): %w", dotEnvPath, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "edusuite.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PAYROLL_WORKERS", payroll.DefaultWorkers)
	v.SetDefault("PAYROLL_PAY_DAY", 25)
	v.SetDefault("PAYROLL_ERROR_POLICY", string(payroll.ContinueOnError))
	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_INTERVAL", time.Hour)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DEMO_SCENARIOS", false)
	v.AutomaticEnv()

	cfg := Config{
		Port:               v.GetInt("PORT"),
		DBPath:             v.GetString("DB_PATH"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		PayrollWorkers:     v.GetInt("PAYROLL_WORKERS"),
		PayrollPayDay:      v.GetInt("PAYROLL_PAY_DAY"),
		PayrollErrorPolicy: payroll.ErrorPolicy(v.GetString("PAYROLL_ERROR_POLICY")),
		SchedulerEnabled:   v.GetBool("SCHEDULER_ENABLED"),
		SchedulerInterval:  v.GetDuration("SCHEDULER_INTERVAL"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DemoScenarios:      v.GetBool("DEMO_SCENARIOS"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.PayrollWorkers <= 0 {
		return fmt.Errorf("PAYROLL_WORKERS must be positive, got %d", c.PayrollWorkers)
	}
	if c.PayrollPayDay < 0 || c.PayrollPayDay > 31 {
		return fmt.Errorf("PAYROLL_PAY_DAY must be 0-31, got %d", c.PayrollPayDay)
	}
	switch c.PayrollErrorPolicy {
	case payroll.AbortOnError, payroll.ContinueOnError:
	default:
		return fmt.Errorf("PAYROLL_ERROR_POLICY must be %q or %q", payroll.AbortOnError, payroll.ContinueOnError)
	}
	if c.SchedulerEnabled && c.SchedulerInterval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// SetupLogger configures the global zerolog logger and returns it.
func (c Config) SetupLogger(out io.Writer) zerolog.Logger {
	if c.LogFormat == "human" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = log.Output(out).With().Timestamp().Logger()
	return log.Logger
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
