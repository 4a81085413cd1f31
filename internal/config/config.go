package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig    `toml:"http"`
	Storage StorageConfig `toml:"storage"`
	Graph   GraphConfig   `toml:"graph"`
	Session SessionConfig `toml:"session"`
	Logging LoggingConfig `toml:"logging"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string        `toml:"host"`
	Port              int           `toml:"port"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	IdleTimeout       time.Duration `toml:"idle_timeout"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout"`
	MetricsEnabled    bool          `toml:"metrics_enabled"`
	AllowedOriginsCSV string        `toml:"allowed_origins"`
	RateLimitRPS      float64       `toml:"rate_limit_rps"` // 0 disables limiting
	RateLimitBurst    int           `toml:"rate_limit_burst"`
}

// StorageConfig selects where accounts and saved simulations live.
type StorageConfig struct {
	Driver      string `toml:"driver"`      // memory|graph
	Simulations string `toml:"simulations"` // memory|sqlite
	SQLitePath  string `toml:"sqlite_path"`
}

// GraphConfig describes connectivity to the graph database.
type GraphConfig struct {
	URI            string `toml:"uri"`
	Database       string `toml:"database"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	MaxConnections int    `toml:"max_connections"`
}

// SessionConfig controls login sessions and the demo account.
type SessionConfig struct {
	Driver        string        `toml:"driver"` // memory|redis
	RedisAddr     string        `toml:"redis_addr"`
	RedisDB       int           `toml:"redis_db"`
	RedisPassword string        `toml:"redis_password"`
	TTL           time.Duration `toml:"ttl"`
	DemoUsername  string        `toml:"demo_username"`
	DemoPassword  string        `toml:"demo_password"`
	DemoUserID    string        `toml:"demo_user_id"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `toml:"level"`
	Format        string `toml:"format"` // text|json
	Colored       bool   `toml:"colored"`
	IncludeCaller bool   `toml:"include_caller"`
}

const (
	StorageMemory = "memory"
	StorageGraph  = "graph"
	StorageSQLite = "sqlite"
	SessionRedis  = "redis"
)

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultRateLimitRPS     = 10
	defaultRateLimitBurst   = 20
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultSQLitePath       = "data/simulations.db"
	defaultRedisAddr        = "localhost:6379"
	defaultSessionTTL       = 12 * time.Hour
	defaultDemoUsername     = "demo"
	defaultDemoPassword     = "demo"
	defaultDemoUserID       = "USR-DEMO"

	// ConfigPathEnv names an optional TOML file applied before environment overrides.
	ConfigPathEnv = "CREDITGUARDIAN_CONFIG"
)

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			MetricsEnabled:  true,
			RateLimitRPS:    defaultRateLimitRPS,
			RateLimitBurst:  defaultRateLimitBurst,
		},
		Storage: StorageConfig{
			Driver:      StorageMemory,
			Simulations: StorageMemory,
			SQLitePath:  defaultSQLitePath,
		},
		Graph: GraphConfig{
			MaxConnections: defaultGraphMaxSessions,
		},
		Session: SessionConfig{
			Driver:       StorageMemory,
			RedisAddr:    defaultRedisAddr,
			TTL:          defaultSessionTTL,
			DemoUsername: defaultDemoUsername,
			DemoPassword: defaultDemoPassword,
			DemoUserID:   defaultDemoUserID,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
	}
}

// Load applies defaults, then the TOML file named by CREDITGUARDIAN_CONFIG, then environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv(ConfigPathEnv); path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTP.Host = valueOrDefault("SERVER_HOST", cfg.HTTP.Host)
	port, err := parsePort("SERVER_PORT", cfg.HTTP.Port)
	if err != nil {
		return err
	}
	cfg.HTTP.Port = port

	for key, target := range map[string]*time.Duration{
		"SERVER_READ_TIMEOUT":     &cfg.HTTP.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    &cfg.HTTP.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":     &cfg.HTTP.IdleTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": &cfg.HTTP.ShutdownTimeout,
		"SESSION_TTL":             &cfg.Session.TTL,
	} {
		if err := parseDuration(key, target); err != nil {
			return err
		}
	}

	cfg.HTTP.MetricsEnabled = parseBoolWithDefault("SERVER_METRICS_ENABLED", cfg.HTTP.MetricsEnabled)
	cfg.HTTP.AllowedOriginsCSV = valueOrDefault("SERVER_ALLOWED_ORIGINS", cfg.HTTP.AllowedOriginsCSV)
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
		}
		cfg.HTTP.RateLimitRPS = rps
	}
	cfg.HTTP.RateLimitBurst = parseIntWithDefault("RATE_LIMIT_BURST", cfg.HTTP.RateLimitBurst)

	cfg.Storage.Driver = valueOrDefault("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Simulations = valueOrDefault("SIMULATION_STORE", cfg.Storage.Simulations)
	cfg.Storage.SQLitePath = valueOrDefault("SQLITE_PATH", cfg.Storage.SQLitePath)

	cfg.Graph.URI = valueOrDefault("GRAPH_URI", cfg.Graph.URI)
	cfg.Graph.Database = valueOrDefault("GRAPH_DATABASE", cfg.Graph.Database)
	cfg.Graph.Username = valueOrDefault("GRAPH_USERNAME", cfg.Graph.Username)
	cfg.Graph.Password = valueOrDefault("GRAPH_PASSWORD", cfg.Graph.Password)
	cfg.Graph.MaxConnections = parseIntWithDefault("GRAPH_MAX_CONNECTIONS", cfg.Graph.MaxConnections)

	cfg.Session.Driver = valueOrDefault("SESSION_DRIVER", cfg.Session.Driver)
	cfg.Session.RedisAddr = valueOrDefault("REDIS_ADDR", cfg.Session.RedisAddr)
	cfg.Session.RedisDB = parseIntWithDefault("REDIS_DB", cfg.Session.RedisDB)
	cfg.Session.RedisPassword = valueOrDefault("REDIS_PASSWORD", cfg.Session.RedisPassword)
	cfg.Session.DemoUsername = valueOrDefault("DEMO_USERNAME", cfg.Session.DemoUsername)
	cfg.Session.DemoPassword = valueOrDefault("DEMO_PASSWORD", cfg.Session.DemoPassword)
	cfg.Session.DemoUserID = valueOrDefault("DEMO_USER_ID", cfg.Session.DemoUserID)

	cfg.Logging.Level = valueOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.Colored = parseBoolWithDefault("LOG_COLOR", cfg.Logging.Colored)
	cfg.Logging.IncludeCaller = parseBoolWithDefault("LOG_INCLUDE_CALLER", cfg.Logging.IncludeCaller)
	return nil
}

// Validate reports every inconsistent setting.
func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageGraph:
		if c.Graph.URI == "" {
			errs = append(errs, errors.New("storage driver graph requires GRAPH_URI"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	switch c.Storage.Simulations {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			errs = append(errs, errors.New("simulation store sqlite requires SQLITE_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown simulation store %q", c.Storage.Simulations))
	}

	switch c.Session.Driver {
	case StorageMemory, SessionRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown session driver %q", c.Session.Driver))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session TTL must be positive"))
	}
	if c.HTTP.RateLimitRPS < 0 || c.HTTP.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate limit values must not be negative"))
	}

	return errors.Join(errs...)
}

// AllowedOrigins splits the CORS allow-list.
func (h HTTPConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(h.AllowedOriginsCSV, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Addr is the listen address.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*target = d
	return nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
