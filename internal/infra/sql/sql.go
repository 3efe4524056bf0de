package sql

import (
	"context"
	"errors"
)

var ErrNotConnected = errors.New("database not connected")

type Database interface {
	Open(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}
