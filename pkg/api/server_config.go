package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the server's runtime settings. YAML on disk, environment
// variables override.
type Config struct {
	Port     int    `yaml:"port" validate:"required,min=1,max=65535"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// AnalysisTimeoutSeconds bounds every analysis request.
	AnalysisTimeoutSeconds int `yaml:"analysis_timeout_seconds" validate:"omitempty,min=1,max=600"`

	// CORSAllowedOrigins lists origins allowed cross-origin access; empty
	// disables cross-origin requests.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// DefaultConfig returns the settings used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Port:                   8080,
		LogLevel:               "info",
		AnalysisTimeoutSeconds: 60,
	}
}

// LoadConfig reads YAML from path (optional), applies environment
// overrides, and validates the result. An empty path yields defaults plus
// overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETGRAPH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("MARKETGRAPH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("MARKETGRAPH_CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i, o := range origins {
			origins[i] = strings.TrimSpace(o)
		}
		cfg.CORSAllowedOrigins = origins
	}
}
