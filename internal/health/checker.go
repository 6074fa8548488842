package health

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by the database client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingChecker struct {
	name string
	ping func(ctx context.Context) error
}

func (c pingChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: c.name, Healthy: true}
	if err := c.ping(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

func NewDBChecker(db Pinger) Checker {
	if db == nil {
		return nil
	}
	return pingChecker{name: "database", ping: db.Ping}
}

// NewRedisChecker returns nil for a nil client so optional redis drops out of the probe.
func NewRedisChecker(client *redis.Client) Checker {
	if client == nil {
		return nil
	}
	return pingChecker{
		name: "redis",
		ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}
