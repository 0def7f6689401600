// Package setup loads the application's configuration: setup.yaml for
// tunable economics and server settings, .env for secrets and the
// database DSN. The pricing engine itself never reads configuration;
// callers pass the values through explicitly.
package setup

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EconomicConfig holds the market-economics knobs the dashboard exposes.
type EconomicConfig struct {
	// LiquidityB is the default LMSR liquidity parameter for markets
	// without a per-market override.
	LiquidityB float64 `yaml:"liquidityB"`
	// ImpactScale calibrates the displayed move-cost magnitudes.
	ImpactScale float64 `yaml:"impactScale"`
	// InitialProbability seeds newly created markets.
	InitialProbability float64 `yaml:"initialProbability"`
	// CurveWindow and CurveSteps shape the sampled impact curve.
	CurveWindow float64 `yaml:"curveWindow"`
	CurveSteps  int     `yaml:"curveSteps"`
	// AgentStartingBalance is the virtual balance granted on registration.
	AgentStartingBalance int64 `yaml:"agentStartingBalance"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port       int    `yaml:"port"`
	CORSOrigin string `yaml:"corsOrigin"`
	// RateLimit is requests per second per client; RateBurst the burst.
	RateLimit float64 `yaml:"rateLimit"`
	RateBurst int     `yaml:"rateBurst"`
}

// Config is the full parsed setup.yaml.
type Config struct {
	Economics EconomicConfig `yaml:"economics"`
	Server    ServerConfig   `yaml:"server"`
}

// Defaults returns the configuration used when setup.yaml is absent or
// leaves fields unset.
func Defaults() Config {
	return Config{
		Economics: EconomicConfig{
			LiquidityB:           142.5,
			ImpactScale:          0.42,
			InitialProbability:   0.5,
			CurveWindow:          0.40,
			CurveSteps:           50,
			AgentStartingBalance: 10000,
		},
		Server: ServerConfig{
			Port:       8080,
			CORSOrigin: "*",
			RateLimit:  25,
			RateBurst:  50,
		},
	}
}

// Load parses the yaml file at path, filling unset fields from
// Defaults. A missing file is not an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Economics.LiquidityB <= 0 {
		return fmt.Errorf("economics.liquidityB must be positive, got %g", c.Economics.LiquidityB)
	}
	if c.Economics.InitialProbability <= 0 || c.Economics.InitialProbability >= 1 {
		return fmt.Errorf("economics.initialProbability must be in (0,1), got %g", c.Economics.InitialProbability)
	}
	if c.Economics.CurveSteps < 2 {
		return fmt.Errorf("economics.curveSteps must be at least 2, got %d", c.Economics.CurveSteps)
	}
	return nil
}

// LoadEnv reads .env if present and returns the named variable. The
// process environment wins over the file.
func LoadEnv(key string) string {
	godotenv.Load()
	return os.Getenv(key)
}

// EnvOrDefault returns the environment variable or a fallback.
func EnvOrDefault(key, fallback string) string {
	if v := LoadEnv(key); v != "" {
		return v
	}
	return fallback
}
