package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string      `yaml:"env" env:"APP_ENV" env-default:"local"`
	StoragePath string      `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	HTTP        HTTPConfig  `yaml:"http"`
	Auth        AuthConfig  `yaml:"auth"`
	Stats       StatsConfig `yaml:"stats"`
}

type HTTPConfig struct {
	Port           int      `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
}

type AuthConfig struct {
	Secret        string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"ACCESS_TTL" env-default:"15m"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"REFRESH_TTL" env-default:"720h"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"TOKEN_SWEEP_INTERVAL" env-default:"1h"`
}

type StatsConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl" env:"STATS_CACHE_TTL" env-default:"1s"`
}

// Load reads YAML config plus env overrides and aborts on missing required
// values (the connection string and token secret must be present).
func Load(path string) *Config {
	var config Config
	err := cleanenv.ReadConfig(path, &config)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &config
}
