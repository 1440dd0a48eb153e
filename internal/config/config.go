package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"basket-dashboard/internal/mining"
)

const (
	envPrefix         = "BASKET_"
	configFileEnv     = "BASKET_CONFIG_FILE"
	maxConfigFileSize = 1024 * 1024
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Data     DataConfig     `koanf:"data"`
	Mining   MiningConfig   `koanf:"mining"`
	Logger   LoggerConfig   `koanf:"logger"`
	Security SecurityConfig `koanf:"security"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DataConfig struct {
	CSVFile       string        `koanf:"csv_file"`
	MaxUploadSize int64         `koanf:"max_upload_size"`
	UploadTimeout time.Duration `koanf:"upload_timeout"`
}

type MiningConfig struct {
	MinSupport    float64       `koanf:"min_support"`
	MinConfidence float64       `koanf:"min_confidence"`
	MinLift       float64       `koanf:"min_lift"`
	MaxLength     int           `koanf:"max_length"`
	Timeout       time.Duration `koanf:"timeout"`
	CacheSize     int           `koanf:"cache_size"`
	GraphRules    int           `koanf:"graph_rules"`
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `koanf:"rate_limit_enabled"`
	RateLimitRPS    int      `koanf:"rate_limit_rps"`
	RateLimitBurst  int      `koanf:"rate_limit_burst"`
	AllowedOrigins  []string `koanf:"allowed_origins"`
	TrustedProxies  []string `koanf:"trusted_proxies"`
}

func Default() *Config {
	th := mining.DefaultThresholds()
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8084,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			CSVFile:       "",
			MaxUploadSize: 64 << 20,
			UploadTimeout: 5 * time.Minute,
		},
		Mining: MiningConfig{
			MinSupport:    th.MinSupport,
			MinConfidence: th.MinConfidence,
			MinLift:       th.MinLift,
			MaxLength:     0,
			Timeout:       2 * time.Minute,
			CacheSize:     1,
			GraphRules:    mining.DefaultGraphRules,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

// Load reads the file named by BASKET_CONFIG_FILE, if any, and then applies
// BASKET_* environment overrides.
func Load() (*Config, error) {
	return LoadWithFile(os.Getenv(configFileEnv))
}

// LoadWithFile layers defaults, the YAML file at path (skipped when path is
// empty) and environment variables, in that order of increasing precedence.
//
// Environment names map onto keys by dropping the prefix, lowercasing and
// turning the first underscore into the section separator:
//
//	BASKET_SERVER_PORT        -> server.port
//	BASKET_MINING_MIN_SUPPORT -> mining.min_support
func LoadWithFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// listKeys are comma separated in the environment.
var listKeys = []string{"security.allowed_origins", "security.trusted_proxies"}

func envKeyValue(name, value string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	if key == "config_file" {
		return "", nil
	}
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return "", nil
	}
	key = section + "." + field
	if slices.Contains(listKeys, key) {
		return key, strings.Split(value, ",")
	}
	return key, value
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Data.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if c.Data.UploadTimeout <= 0 {
		return fmt.Errorf("upload timeout must be positive")
	}

	if err := c.Mining.Thresholds().Validate(); err != nil {
		return err
	}

	if c.Mining.MaxLength < 0 {
		return fmt.Errorf("mining max length cannot be negative")
	}

	if c.Mining.Timeout <= 0 {
		return fmt.Errorf("mining timeout must be positive")
	}

	if c.Mining.CacheSize < 1 {
		return fmt.Errorf("mining cache size must be at least 1, got %d", c.Mining.CacheSize)
	}

	if c.Mining.GraphRules < 1 {
		return fmt.Errorf("graph rules must be at least 1, got %d", c.Mining.GraphRules)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func (m MiningConfig) Thresholds() mining.Thresholds {
	return mining.Thresholds{
		MinSupport:    m.MinSupport,
		MinConfidence: m.MinConfidence,
		MinLift:       m.MinLift,
	}
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
