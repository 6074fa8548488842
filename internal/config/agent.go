package config

import (
	"fmt"
	"strings"
	"time"
)

type Agent struct {
	Port          uint32         `env:"AGENT_PORT" envDefault:"3001"`
	Transport     AgentTransport `env:"AGENT_TRANSPORT" envDefault:"HTTP"`
	ProductAPIURL string         `env:"PRODUCT_API_URL" envDefault:"http://localhost:3000/api"`
	APITimeout    time.Duration  `env:"AGENT_API_TIMEOUT" envDefault:"10s"`
}

// AgentTransport selects how the tool server is exposed.
type AgentTransport uint8

const (
	AgentTransportHTTP AgentTransport = iota
	AgentTransportStdio
)

func (t AgentTransport) String() string {
	return []string{"HTTP", "STDIO"}[t]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (t *AgentTransport) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "HTTP":
		*t = AgentTransportHTTP
	case "STDIO":
		*t = AgentTransportStdio
	default:
		return fmt.Errorf("unknown agent transport: %s", text)
	}
	return nil
}
