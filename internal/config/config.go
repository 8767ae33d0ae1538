package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	BotBaseURL        string `env:"BOT_BASE_URL,required"`
	BotTimeoutSeconds int    `env:"BOT_TIMEOUT_SECONDS" envDefault:"30"`
	AdminBaseURL      string `env:"ADMIN_BASE_URL"`
	RedisAddr         string `env:"REDIS_ADDR,required"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	RealtimeChannel   string `env:"REALTIME_CHANNEL" envDefault:"messages:insert"`
	JWTSecret         string `env:"JWT_SECRET,required"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
