package config

import (
	"flag"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultAuthSecret используется только когда AUTH_SECRET не задан (локальная разработка).
const DefaultAuthSecret = "dev-secret-key"

type Config struct {
	// Server settings
	DatabaseDSN string        `env:"DATABASE_URI"`
	AuthSecret  string        `env:"AUTH_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"` // 0 — токены без срока действия
	BaseURL     string        `env:"BASE_URL"`
	EnableHTTPS bool          `env:"ENABLE_HTTPS"`
	Production  bool          `env:"PRODUCTION"`

	// Upload settings
	ImageMaxSizeMB int `env:"IMAGE_MAX_MB"`

	// Object storage (S3-compatible)
	BucketName     string `env:"BUCKET_NAME"`
	Region         string `env:"AWS_REGION"`
	AccessKey      string `env:"AWS_ACCESS_KEY"`
	SecretKey      string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3PathStyle    bool   `env:"S3_FORCE_PATH_STYLE"`
	S3ACL          string `env:"S3_ACL"`
	CORSOriginsRaw string `env:"CORS_ORIGINS"`

	// Derived
	ServerURL   string   `env:"-"`
	CORSOrigins []string `env:"-"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "время жизни JWT (0 — без срока)")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address:port для HTTP сервера")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "сервер доступен по HTTPS (влияет на ServerURL)")
	flag.IntVar(&cfg.ImageMaxSizeMB, "image-max-mb", cfg.ImageMaxSizeMB, "максимальный размер изображения, MiB")
	flag.StringVar(&cfg.BucketName, "bucket", cfg.BucketName, "имя S3 бакета")
	flag.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "endpoint S3-совместимого хранилища")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = DefaultAuthSecret
	}
	if cfg.TokenTTL < 0 {
		cfg.TokenTTL = 0
	}
	if cfg.ImageMaxSizeMB <= 0 {
		cfg.ImageMaxSizeMB = 5
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.S3ACL == "" {
		cfg.S3ACL = "public-read"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "stockpile.db"
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	cfg.CORSOrigins = splitOrigins(cfg.CORSOriginsRaw)

	return cfg
}

// ImageMaxBytes лимит размера изображения в байтах.
func (c *Config) ImageMaxBytes() int64 {
	return int64(c.ImageMaxSizeMB) * 1024 * 1024
}

// UsesDefaultSecret true, если JWT подписывается дефолтным секретом.
func (c *Config) UsesDefaultSecret() bool {
	return c.AuthSecret == DefaultAuthSecret
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
