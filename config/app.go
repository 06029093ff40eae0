package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// I/O back ends selectable with TRAFFIC_MODE
const (
	ModeSim      = "sim"
	ModeSerial   = "serial"
	ModeExpander = "expander"
)

// AppConfig holds the host runtime settings
type AppConfig struct {
	ID    string `env:"TRAFFIC_ID"`
	Mode  string `env:"TRAFFIC_MODE, default=sim"`
	Table string `env:"TRAFFIC_TABLE"`

	// serial panel
	Device      string        `env:"TRAFFIC_DEVICE, default=/dev/ttyACM0"`
	Baud        int           `env:"TRAFFIC_BAUD, default=115200"`
	ReadTimeout time.Duration `env:"TRAFFIC_READ_TIMEOUT, default=100ms"`

	// MCP23017 expander on a Linux I2C bus
	I2CBus  string `env:"TRAFFIC_I2C_BUS, default=/dev/i2c-1"`
	I2CAddr uint8  `env:"TRAFFIC_I2C_ADDR, default=0x20"`

	// simulator
	Seed  int64   `env:"TRAFFIC_SEED, default=1"`
	Speed float64 `env:"TRAFFIC_SPEED, default=1"`

	Env string `env:"ENV, default=dev"`
}

// Validate checks the values envconfig cannot
func (c *AppConfig) Validate() error {
	switch c.Mode {
	case ModeSim, ModeSerial, ModeExpander:
	default:
		return fmt.Errorf("unknown mode %q (want %s, %s or %s)", c.Mode, ModeSim, ModeSerial, ModeExpander)
	}
	if c.Env != "dev" && c.Env != "prod" {
		return fmt.Errorf("incorrect env type: %s. possible values: dev, prod", c.Env)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %g", c.Speed)
	}
	return nil
}

// LoadApp fills an AppConfig from l
func LoadApp(ctx context.Context, l envconfig.Lookuper) (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &c,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadAppEnv loads .env files (missing ones are ignored) and then the
// process environment
func LoadAppEnv(ctx context.Context, files ...string) (*AppConfig, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return LoadApp(ctx, envconfig.OsLookuper())
}

// NewLogger returns the host logger writing to w: text at debug level for
// dev, JSON at info level for prod
func NewLogger(w io.Writer, env string) *slog.Logger {
	var logger *slog.Logger
	switch env {
	case "prod":
		logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return logger
}
