package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Risk     RiskConfig     `koanf:"risk"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	MaxRetries   int           `koanf:"max_retries"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// RiskConfig is the engine's tuning surface. Everything here is data, not
// code: category weights, review thresholds, velocity tiers, and the AI
// evaluator settings can change without touching analyzer logic.
type RiskConfig struct {
	Weights           WeightsConfig  `koanf:"weights"`
	SoftThreshold     int            `koanf:"soft_threshold"`
	HardThreshold     int            `koanf:"hard_threshold"`
	EvaluationTimeout time.Duration  `koanf:"evaluation_timeout"`
	Velocity          VelocityConfig `koanf:"velocity"`
	AI                AIConfig       `koanf:"ai"`
	Lists             ListsConfig    `koanf:"lists"`
}

type WeightsConfig struct {
	Email      float64 `koanf:"email"`
	Phone      float64 `koanf:"phone"`
	Name       float64 `koanf:"name"`
	IP         float64 `koanf:"ip"`
	Behavioral float64 `koanf:"behavioral"`
}

// Sum returns the total of all category weights
func (w WeightsConfig) Sum() float64 {
	return w.Email + w.Phone + w.Name + w.IP + w.Behavioral
}

type VelocityConfig struct {
	Retention    time.Duration `koanf:"retention"`
	BurstWindow  time.Duration `koanf:"burst_window"`
	HourlyWindow time.Duration `koanf:"hourly_window"`
	DeviceWindow time.Duration `koanf:"device_window"`

	ExtremeBurstCount int `koanf:"extreme_burst_count"`
	ExtremeBurstScore int `koanf:"extreme_burst_score"`
	RapidBurstCount   int `koanf:"rapid_burst_count"`
	RapidBurstScore   int `koanf:"rapid_burst_score"`
	HighVolumeCount   int `koanf:"high_volume_count"`
	HighVolumeScore   int `koanf:"high_volume_score"`
	MultipleCount     int `koanf:"multiple_count"`
	MultipleScore     int `koanf:"multiple_score"`
	DeviceAbuseCount  int `koanf:"device_abuse_count"`
	DeviceAbuseScore  int `koanf:"device_abuse_score"`
}

type AIConfig struct {
	Enabled       bool          `koanf:"enabled"`
	BaseURL       string        `koanf:"base_url"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`
	RateLimitRPS  int           `koanf:"rate_limit_rps"`
	CombinePolicy string        `koanf:"combine_policy"` // "max" or "blend"
	BlendAIWeight float64       `koanf:"blend_ai_weight"`
}

// ListsConfig extends the built-in pattern lists with deployment-specific data
type ListsConfig struct {
	ExtraDisposableDomains []string `koanf:"extra_disposable_domains"`
	ExtraPlaceholderNames  []string `koanf:"extra_placeholder_names"`
	ExtraDatacenterCIDRs   []string `koanf:"extra_datacenter_cidrs"`
	ExtraTorExitIPs        []string `koanf:"extra_tor_exit_ips"`
}

const (
	CombinePolicyMax   = "max"
	CombinePolicyBlend = "blend"
)

// Load reads configuration from defaults, an optional YAML file, and
// RISK_-prefixed environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = "configs/config.yaml"
	}
	// A missing config file is fine (env vars can carry the full
	// configuration); a file that exists but fails to read or parse is not.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	// Double underscore separates nesting levels so keys like soft_threshold
	// stay addressable: RISK_RISK__SOFT_THRESHOLD -> risk.soft_threshold.
	if err := k.Load(env.Provider("RISK_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "RISK_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Defaults returns the baseline configuration
func Defaults() *Config {
	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Risk: RiskConfig{
			Weights: WeightsConfig{
				Email:      0.25,
				Phone:      0.25,
				Name:       0.15,
				IP:         0.20,
				Behavioral: 0.15,
			},
			SoftThreshold:     40,
			HardThreshold:     70,
			EvaluationTimeout: 2 * time.Second,
			Velocity: VelocityConfig{
				Retention:         2 * time.Hour,
				BurstWindow:       5 * time.Minute,
				HourlyWindow:      1 * time.Hour,
				DeviceWindow:      1 * time.Hour,
				ExtremeBurstCount: 7,
				ExtremeBurstScore: 90,
				RapidBurstCount:   5,
				RapidBurstScore:   70,
				HighVolumeCount:   13,
				HighVolumeScore:   30,
				MultipleCount:     8,
				MultipleScore:     10,
				DeviceAbuseCount:  25,
				DeviceAbuseScore:  80,
			},
			AI: AIConfig{
				Enabled:       false,
				Timeout:       300 * time.Millisecond,
				RateLimitRPS:  20,
				CombinePolicy: CombinePolicyMax,
				BlendAIWeight: 0.5,
			},
		},
	}
}

// Validate enforces startup-time configuration invariants. A bad tuning
// surface is fatal at initialization, never at evaluation time.
func (c *Config) Validate() error {
	r := c.Risk

	if diff := math.Abs(r.Weights.Sum() - 1.0); diff > 1e-9 {
		return fmt.Errorf("risk.weights must sum to 1.0, got %.6f", r.Weights.Sum())
	}
	for name, w := range map[string]float64{
		"email":      r.Weights.Email,
		"phone":      r.Weights.Phone,
		"name":       r.Weights.Name,
		"ip":         r.Weights.IP,
		"behavioral": r.Weights.Behavioral,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("risk.weights.%s must be in [0,1], got %.4f", name, w)
		}
	}

	if r.SoftThreshold < 0 || r.HardThreshold > 100 {
		return fmt.Errorf("risk thresholds must be within [0,100]")
	}
	if r.SoftThreshold >= r.HardThreshold {
		return fmt.Errorf("risk.soft_threshold (%d) must be below risk.hard_threshold (%d)",
			r.SoftThreshold, r.HardThreshold)
	}

	if r.EvaluationTimeout <= 0 {
		return fmt.Errorf("risk.evaluation_timeout must be positive")
	}

	v := r.Velocity
	if v.Retention <= 0 || v.BurstWindow <= 0 || v.HourlyWindow <= 0 || v.DeviceWindow <= 0 {
		return fmt.Errorf("risk.velocity windows must be positive")
	}
	if v.BurstWindow >= v.HourlyWindow {
		return fmt.Errorf("risk.velocity.burst_window must be shorter than hourly_window")
	}
	if v.RapidBurstCount >= v.ExtremeBurstCount {
		return fmt.Errorf("risk.velocity.rapid_burst_count must be below extreme_burst_count")
	}
	if v.MultipleCount >= v.HighVolumeCount {
		return fmt.Errorf("risk.velocity.multiple_count must be below high_volume_count")
	}

	if r.AI.Enabled {
		if r.AI.BaseURL == "" {
			return fmt.Errorf("risk.ai.base_url is required when the AI evaluator is enabled")
		}
		if r.AI.Timeout <= 0 {
			return fmt.Errorf("risk.ai.timeout must be positive when the AI evaluator is enabled")
		}
	}
	switch r.AI.CombinePolicy {
	case CombinePolicyMax:
	case CombinePolicyBlend:
		if r.AI.BlendAIWeight < 0 || r.AI.BlendAIWeight > 1 {
			return fmt.Errorf("risk.ai.blend_ai_weight must be in [0,1]")
		}
	default:
		return fmt.Errorf("risk.ai.combine_policy must be %q or %q", CombinePolicyMax, CombinePolicyBlend)
	}

	return nil
}
