package infra

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for both binaries (console and stubd).
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Console ConsoleConfig `mapstructure:"console"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Stub    StubConfig    `mapstructure:"stub"`
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Circuit breaker over the transport; 0 max_failures disables it.
	CBMaxFailures uint32        `mapstructure:"cb_max_failures"`
	CBInterval    time.Duration `mapstructure:"cb_interval"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`
}

// SessionConfig controls where the persisted session lives.
type SessionConfig struct {
	StorePath string `mapstructure:"store_path"`
}

// ConsoleConfig tunes the dashboard surface.
type ConsoleConfig struct {
	PageSize        int    `mapstructure:"page_size"`        // Goals overview page size
	DefaultAutonomy string `mapstructure:"default_autonomy"` // Autonomy for console-created goals
	DefaultPriority string `mapstructure:"default_priority"`
}

// LoggerConfig configures zap.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Path   string `mapstructure:"path"`   // Log file; empty logs to stderr
}

// StubConfig configures the local stub API server.
type StubConfig struct {
	Addr         string        `mapstructure:"addr"`
	MetricsAddr  string        `mapstructure:"metrics_addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`

	// RSA keys for RS256 token signing. Left empty, the stub generates an
	// ephemeral pair at startup.
	PrivateKeyPath string `mapstructure:"private_key_path"`
	PublicKeyPath  string `mapstructure:"public_key_path"`
	PrivateKey     []byte
	PublicKey      []byte

	// Requests per second per client; 0 disables rate limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// LoadConfig merges the config file, ENV and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// ENV overrides the file: MINDMESH_API_BASE_URL beats api.base_url.
	v.SetEnvPrefix("MINDMESH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No file: ENV and defaults only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	cfg.Stub.PrivateKey = loadKeyResource(cfg.Stub.PrivateKeyPath, "MINDMESH_STUB_PRIVATE_KEY_DATA")
	cfg.Stub.PublicKey = loadKeyResource(cfg.Stub.PublicKeyPath, "MINDMESH_STUB_PUBLIC_KEY_DATA")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.cb_max_failures", 0)
	v.SetDefault("api.cb_interval", 30*time.Second)
	v.SetDefault("api.cb_timeout", 30*time.Second)

	v.SetDefault("session.store_path", defaultSessionPath())

	v.SetDefault("console.page_size", 5)
	v.SetDefault("console.default_autonomy", "L1")
	v.SetDefault("console.default_priority", "medium")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("stub.addr", ":8000")
	v.SetDefault("stub.metrics_addr", ":9090")
	v.SetDefault("stub.read_timeout", 5*time.Second)
	v.SetDefault("stub.write_timeout", 10*time.Second)
	v.SetDefault("stub.token_ttl", 24*time.Hour)
	v.SetDefault("stub.bcrypt_cost", 10)
	v.SetDefault("stub.rate_limit", 50.0)
	v.SetDefault("stub.rate_burst", 20)
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mindmesh/session.json"
	}
	return filepath.Join(home, ".mindmesh", "session.json")
}

// loadKeyResource reads a PEM key from ENV (for containers) or from the
// configured file path, whichever is present.
func loadKeyResource(path string, envDataKey string) []byte {
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}
