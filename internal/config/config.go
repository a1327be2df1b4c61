// config реализует конфигурацию blog-service: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	DB       DBConfig       `yaml:"db"`
	Redis    RedisConfig    `yaml:"redis"`
	S3       S3Config       `yaml:"s3"`
	Upload   UploadConfig   `yaml:"upload"`
	Auth     AuthConfig     `yaml:"auth"`
	Firebase FirebaseConfig `yaml:"firebase"`
	Limits   LimitsConfig   `yaml:"limits"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки REST API.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"3000"`
	// Разрешённые Origin для SPA; "*" — любой.
	AllowedOrigins []string `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — настройки подключения к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
	// Transactions включает многодокументные транзакции (нужен replica set).
	// Без транзакций многошаговые изменения выполняются последовательно.
	Transactions bool `yaml:"transactions" env:"DB_TRANSACTIONS" env-default:"false"`
}

// RedisConfig — опциональный кэш ленты трендов. Пустой URL отключает кэш.
type RedisConfig struct {
	URL         string        `yaml:"url" env:"REDIS_URL"`
	Prefix      string        `yaml:"prefix" env:"REDIS_PREFIX" env-default:"blog:"`
	TrendingTTL time.Duration `yaml:"trending_ttl" env:"REDIS_TRENDING_TTL" env-default:"1m"`
}

// S3Config — объектное хранилище для изображений.
type S3Config struct {
	Endpoint      string        `yaml:"endpoint" env:"S3_ENDPOINT" env-required:"true"`
	RootUser      string        `yaml:"root_user" env:"S3_ROOT_USER" env-required:"true"`
	RootPassword  string        `yaml:"root_password" env:"S3_ROOT_PASSWORD" env-required:"true"`
	Bucket        string        `yaml:"bucket" env:"S3_BUCKET" env-required:"true"`
	PresignTTL    time.Duration `yaml:"presign_ttl" env:"S3_PRESIGN_TTL" env-default:"1000s"`
	PublicBaseURL string        `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

// UploadConfig — ограничения загрузки изображений.
type UploadConfig struct {
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"UPLOAD_ALLOWED_CONTENT_TYPES" env-separator:"," env-default:"image/jpeg,image/png,image/webp"`
}

// AuthConfig — выпуск и проверка access-токенов.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	Issuer     string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"blog-service"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"72h"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// FirebaseConfig — проверка Google ID-токенов через Firebase Auth.
// Пустой CredentialsFile отключает вход через Google.
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" env:"FIREBASE_CREDENTIALS_FILE"`
}

// LimitsConfig — размеры страниц выдачи.
type LimitsConfig struct {
	Blogs         int64 `yaml:"blogs" env:"LIMIT_BLOGS" env-default:"5"`
	Search        int64 `yaml:"search" env:"LIMIT_SEARCH" env-default:"2"`
	Comments      int64 `yaml:"comments" env:"LIMIT_COMMENTS" env-default:"5"`
	Notifications int64 `yaml:"notifications" env:"LIMIT_NOTIFICATIONS" env-default:"10"`
	Users         int64 `yaml:"users" env:"LIMIT_USERS" env-default:"50"`
	// Max — верхняя граница для limit, переданного клиентом.
	Max int64 `yaml:"max" env:"LIMIT_MAX" env-default:"100"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return readFile(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return readFile(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 bytes")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be in [4, 31]")
	}

	if c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required")
	}

	if c.S3.PresignTTL < time.Second {
		return fmt.Errorf("s3.presign_ttl must be at least 1s")
	}

	if len(c.Upload.AllowedContentTypes) == 0 {
		return fmt.Errorf("upload.allowed_content_types must not be empty")
	}

	if c.Firebase.CredentialsFile != "" && c.Firebase.ProjectID == "" {
		return fmt.Errorf("firebase.project_id is required when credentials_file is set")
	}

	limits := []struct {
		name  string
		value int64
	}{
		{"limits.blogs", c.Limits.Blogs},
		{"limits.search", c.Limits.Search},
		{"limits.comments", c.Limits.Comments},
		{"limits.notifications", c.Limits.Notifications},
		{"limits.users", c.Limits.Users},
	}
	for _, l := range limits {
		if l.value <= 0 {
			return fmt.Errorf("%s must be > 0", l.name)
		}

		if l.value > c.Limits.Max {
			return fmt.Errorf("%s must be <= limits.max", l.name)
		}
	}

	return nil
}
