package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug       bool    `yaml:"debug" env:"DEBUG"`
	AppSecret   string  `yaml:"app_secret" env:"APP_SECRET" env-required:"true"`
	PublicURL   string  `yaml:"public_url" env:"PUBLIC_URL" env-default:"http://localhost:8000"`
	FrontendURL string  `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	Limiter     Limiter `yaml:"limiter"`
	Server      Server  `yaml:"server"`
	DB          DB      `yaml:"db"`
	Auth        Auth    `yaml:"auth"`
	SMTPServer  SMTP    `yaml:"smtp"`
	CORS        CORS    `yaml:"cors"`
	Uploads     Uploads `yaml:"uploads"`
	Tasks       Tasks   `yaml:"tasks"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled" env:"LIMITER_ENABLED"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
	Host string `yaml:"host" env:"HOST" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type DB struct {
	Dsn             string        `yaml:"dsn" env:"DB_DSN" env-required:"true"`
	MaxConns        int           `yaml:"max_conns" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env-default:"5s"`
}

type Auth struct {
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env-default:"30m"`
	VerificationTTL time.Duration `yaml:"verification_ttl" env-default:"10m"`
	BcryptCost      int           `yaml:"bcrypt_cost" env-default:"10"`
}

type SMTP struct {
	Host         string        `yaml:"host" env:"SMTP_HOST"`
	Port         int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username     string        `yaml:"username" env:"SMTP_USERNAME"`
	Password     string        `yaml:"password" env:"SMTP_PASSWORD"`
	Sender       string        `yaml:"sender" env:"SMTP_SENDER" env-default:"Mbox <no-reply@mbox.local>"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	RetriesCount int           `yaml:"retries_count" env-default:"3"`
	ApiURL       string        `yaml:"api_url" env:"MAIL_API_URL"`
	ApiToken     string        `yaml:"api_token" env:"MAIL_API_TOKEN"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

type Uploads struct {
	Dir       string `yaml:"dir" env:"UPLOADS_DIR" env-default:"uploads"`
	URLPrefix string `yaml:"url_prefix" env-default:"/uploads"`
	MaxSize   int64  `yaml:"max_size" env-default:"5242880"`
}

type Tasks struct {
	Workers   int `yaml:"workers" env-default:"4"`
	QueueSize int `yaml:"queue_size" env-default:"100"`
}

// MustLoad reads .env (when present) into the environment, then the YAML file,
// then applies environment overrides.
func MustLoad(configPath string) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic(fmt.Errorf("loading .env: %w", err))
	}
	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic(fmt.Errorf("config file %s not found", configPath))
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic(err)
	}
	if cfg.Auth.BcryptCost < 10 {
		cfg.Auth.BcryptCost = 10
	}
	return &cfg
}
