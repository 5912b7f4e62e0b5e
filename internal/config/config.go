package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Advisor  AdvisorConfig  `yaml:"advisor"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Capacity CapacityConfig `yaml:"capacity"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type AdvisorConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type RefreshConfig struct {
	Enabled        bool `yaml:"enabled"`
	TickIntervalMs int  `yaml:"tick_interval_ms"`
}

// CapacityConfig declares the planning totals per resource type. The rollup
// reports whatever types appear here or in allocations; nothing is hardcoded.
type CapacityConfig struct {
	Totals map[string]float64 `yaml:"totals"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.TickIntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Advisor: AdvisorConfig{
			URL: "http://localhost:9260",
		},
		Refresh: RefreshConfig{
			Enabled:        false,
			TickIntervalMs: 300000,
		},
		Capacity: CapacityConfig{
			Totals: map[string]float64{
				"eng_weeks": 120,
				"budget_k":  500,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COMPASS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("COMPASS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("COMPASS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("COMPASS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("COMPASS_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("COMPASS_ADVISOR_URL"); v != "" {
		cfg.Advisor.URL = v
	}
	if v := os.Getenv("COMPASS_ADVISOR_TOKEN"); v != "" {
		cfg.Advisor.Token = v
	}
	if v := os.Getenv("COMPASS_REFRESH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Refresh.Enabled = b
		}
	}
	if v := os.Getenv("COMPASS_REFRESH_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Refresh.TickIntervalMs = n
		}
	}
	if v := os.Getenv("COMPASS_CAPACITY_TOTALS"); v != "" {
		if totals := parseTotals(v); len(totals) > 0 {
			cfg.Capacity.Totals = totals
		}
	}
	if v := os.Getenv("COMPASS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// parseTotals reads "type=amount" pairs separated by commas, e.g.
// "eng_weeks=120,budget_k=500". Unparseable pairs are skipped.
func parseTotals(v string) map[string]float64 {
	totals := make(map[string]float64)
	for _, pair := range strings.Split(v, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		if f, err := strconv.ParseFloat(parts[1], 64); err == nil {
			totals[parts[0]] = f
		}
	}
	return totals
}
