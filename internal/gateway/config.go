package gateway

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/spiritstitch/atelier/internal/domain"
)

// Профили окружения. В production все параметры БД обязаны приходить из
// окружения, в local действуют значения по умолчанию.
const (
	EnvProduction = "production"
	EnvLocal      = "local"
)

// Config описывает параметры подключения к PostgreSQL.
type Config struct {
	Env      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	// MaxRetries ограничивает число переподключений в EnsureOrFail.
	MaxRetries int
}

// LoadConfig читает конфигурацию из переменных окружения с префиксом STITCH_.
// Ожидаемые имена: STITCH_ENV, STITCH_DB_HOST, STITCH_DB_PORT, STITCH_DB_NAME,
// STITCH_DB_USER, STITCH_DB_PASSWORD, STITCH_DB_SSLMODE.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STITCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV", EnvLocal)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_RETRIES", defaultMaxRetries)

	cfg := Config{
		Env:        strings.ToLower(strings.TrimSpace(v.GetString("ENV"))),
		Host:       v.GetString("DB_HOST"),
		Port:       v.GetInt("DB_PORT"),
		Name:       v.GetString("DB_NAME"),
		User:       v.GetString("DB_USER"),
		Password:   v.GetString("DB_PASSWORD"),
		SSLMode:    v.GetString("DB_SSLMODE"),
		MaxRetries: v.GetInt("DB_MAX_RETRIES"),
	}

	if cfg.Env != EnvProduction {
		cfg.applyLocalDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyLocalDefaults подставляет параметры локальной разработки.
func (c *Config) applyLocalDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.Name == "" {
		c.Name = "spiritstitch"
	}
	if c.User == "" {
		c.User = "postgres"
	}
}

// Validate проверяет полноту конфигурации. Возвращает ErrConfigIncomplete
// с перечислением отсутствующих ключей.
func (c Config) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "STITCH_DB_HOST")
	}
	if c.Port == 0 {
		missing = append(missing, "STITCH_DB_PORT")
	}
	if c.Name == "" {
		missing = append(missing, "STITCH_DB_NAME")
	}
	if c.User == "" {
		missing = append(missing, "STITCH_DB_USER")
	}
	if c.Env == EnvProduction && c.Password == "" {
		missing = append(missing, "STITCH_DB_PASSWORD")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfigIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// DSN собирает connection string. Пароль кодируется через url.UserPassword,
// спецсимволы безопасны.
func (c Config) DSN() string {
	var userInfo *url.Userinfo
	if c.Password != "" {
		userInfo = url.UserPassword(c.User, c.Password)
	} else {
		userInfo = url.User(c.User)
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}
