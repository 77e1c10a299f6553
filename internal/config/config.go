package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env-default:"local"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Postgres   Postgres   `yaml:"postgres"`
	Redis      Redis      `yaml:"redis"`
	JWT        JWT        `yaml:"jwt"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
	WS         WS         `yaml:"websocket"`
}

type Minio struct {
	Endpoint  string                  `yaml:"endpoint" env-default:"minio:9000"`
	AccessKey string                  `yaml:"access_key"`
	SecretKey string                  `yaml:"secret_key"`
	UseSSL    bool                    `yaml:"use_ssl"`
	Buckets   map[string]BucketConfig `yaml:"buckets"`
}

type BucketConfig struct {
	Name       string        `yaml:"name"`
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

type ES struct {
	Hosts    []string `yaml:"hosts"`
	Index    string   `yaml:"index" env-default:"users"`
	Password string   `yaml:"password"`
}

type Redis struct {
	Addr     string `yaml:"addr" env-default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" env-default:"0"`
}

// JWT holds token lifetimes and transport placement. The signing key itself is
// not configured here: it is loaded from (or generated into) durable storage at
// startup exactly once.
//
// The access-token cookie is readable by client script (HttpOnly=false) so the
// browser can copy it into the Authorization header; the refresh cookie, which
// alone can mint new credentials, is always HttpOnly.
type JWT struct {
	Issuer        string        `yaml:"issuer" env-default:"chathive"`
	AccessTTL     time.Duration `yaml:"access_token_ttl" env-default:"30m"`
	RefreshTTL    time.Duration `yaml:"refresh_token_ttl" env-default:"168h"`
	AccessCookie  string        `yaml:"access_cookie" env-default:"access_token"`
	RefreshCookie string        `yaml:"refresh_cookie" env-default:"refresh_token"`
	EmailCookie   string        `yaml:"email_cookie" env-default:"email"`
	SecureCookies bool          `yaml:"secure_cookies" env-default:"false"`
}

type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8081"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type WS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	ReadLimit      int64    `yaml:"read_limit" env-default:"65536"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {

		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Can not read config file %s", err)
	}

	return &cfg
}
