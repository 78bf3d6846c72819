package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env                 string     `yaml:"env" env:"ENV"`
	Storage             string     `yaml:"storage" env:"STORAGE"`
	ShortTokenLength    int        `yaml:"short_token_length" env:"SHORT_TOKEN_LENGTH"`
	MaxGenerateAttempts int        `yaml:"max_generate_attempts" env:"MAX_GENERATE_ATTEMPTS"`
	HTTPServer          HTTPServer `yaml:"http_server" envPrefix:"HTTP_SERVER_"`
	Postgres            Postgres   `yaml:"postgres" envPrefix:"POSTGRES_"`
	Redis               Redis      `yaml:"redis" envPrefix:"REDIS_"`
}

type HTTPServer struct {
	Port           int           `yaml:"port" env:"PORT"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	MaxHeaderBytes int           `yaml:"max_header_bytes" env:"MAX_HEADER_BYTES"`
	CertFile       string        `yaml:"cert_file" env:"CERT_FILE"`
	KeyFile        string        `yaml:"key_file" env:"KEY_FILE"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user" env:"USER"`
	Password        string        `yaml:"password" env:"PASSWORD"`
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	DB              string        `yaml:"db" env:"DB"`
	SSLMode         string        `yaml:"sslmode" env:"SSLMODE"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MigrationsPath  string        `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnectTimeout:  5 * time.Second,
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
	MigrationsPath:  "file://migrations",
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Redis struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	PoolSize int    `yaml:"pool_size" env:"POOL_SIZE"`
}

var defaultRedis = Redis{
	Addr: "localhost:6379",
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to parse environment: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.Storage = StorageMemory
	cfg.ShortTokenLength = 8
	cfg.MaxGenerateAttempts = 10
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Redis = defaultRedis
}

func (cfg *Config) validate() error {
	switch cfg.Env {
	case EnvDev, EnvStage, EnvProd:
	default:
		return fmt.Errorf("%w: unknown env %q", ErrInvalidConfig, cfg.Env)
	}

	switch cfg.Storage {
	case StoragePostgres, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, cfg.Storage)
	}

	if cfg.ShortTokenLength <= 0 {
		return fmt.Errorf("%w: short_token_length must be positive", ErrInvalidConfig)
	}

	if cfg.MaxGenerateAttempts <= 0 {
		return fmt.Errorf("%w: max_generate_attempts must be positive", ErrInvalidConfig)
	}

	return nil
}
