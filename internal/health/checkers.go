package health

import "context"

// Pinger is any dependency exposing a Ping-style liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker wraps a Ping-capable dependency as a named checker.
func NewPingChecker(name string, pinger Pinger) Checker {
	return &pingChecker{name: name, pinger: pinger}
}

func (c *pingChecker) Name() string { return c.name }

func (c *pingChecker) Check(ctx context.Context) error {
	return c.pinger.Ping(ctx)
}
