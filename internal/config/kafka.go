package config

// Kafka is only read when events are enabled.
type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"product-management"`
}

type Events struct {
	Enabled           bool `env:"EVENTS_ENABLED" envDefault:"false"`
	LowStockThreshold int  `env:"EVENTS_LOW_STOCK_THRESHOLD" envDefault:"5"`
}
