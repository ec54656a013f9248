package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	ListenAddr string        `yaml:"listen_addr" validate:"required"`
	BaseURL    string        `yaml:"base_url" validate:"required"` // used to build topic links in moderator posts
	JwtTTL     time.Duration `yaml:"jwt_ttl" validate:"required"`
	LogLevel   string        `yaml:"log_level"`
	LogJSON    bool          `yaml:"log_json"`
	Locale     string        `yaml:"locale" validate:"required"`

	TitleMinLength int `yaml:"title_min_length" validate:"required"`
	TitleMaxLength int `yaml:"title_max_length" validate:"required"`
	RawMaxLength   int `yaml:"raw_max_length" validate:"required"`

	CategoryAccessRefreshInterval time.Duration `yaml:"category_access_refresh_interval" validate:"required"` // seconds
	CorsAllowedOrigins            []string      `yaml:"cors_allowed_origins"`

	Queue Queue `yaml:"queue"`
}

type Queue struct {
	MaxWorkers  int `yaml:"max_workers" validate:"required"`
	MaxAttempts int `yaml:"max_attempts" validate:"required"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

// DSN is the URL form of the connection settings, used by the pgx pool of the job queue.
func (p Pg) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.Dbname)
}

type Private struct {
	JwtKey string `yaml:"jwt_key" validate:"required"`
	Pg     Pg     `yaml:"pg"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err = yaml.UnmarshalStrict(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}

	if err = validator.New(validator.WithRequiredStructEnabled()).Struct(output); err != nil {
		panic(fmt.Sprintf("invalid config file %s: %v", configPath, err))
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
