package config

// Redis is optional. An empty address disables every Redis-backed feature.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}
