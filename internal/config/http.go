package config

import "time"

type HTTP struct {
	Port           uint32        `env:"HTTP_PORT" envDefault:"3000"`
	Swagger        bool          `env:"HTTP_SWAGGER" envDefault:"true"`
	CorsOrigins    []string      `env:"HTTP_CORS_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000" envSeparator:","`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes   int64         `env:"HTTP_MAX_BODY_BYTES" envDefault:"1048576"`
}

type RateLimit struct {
	Enabled  bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"300"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	FailOpen bool          `env:"RATE_LIMIT_FAIL_OPEN" envDefault:"true"`
}
