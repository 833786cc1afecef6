package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	EventsStream = "EVENTS"
	JobsStream   = "JOBS"
)

// Connect dials url. With failFast the dial gives up after timeout, which is what the
// startup reachability check needs; otherwise the client keeps retrying in the background.
func Connect(url, name string, failFast bool, timeout time.Duration) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
	}
	if failFast {
		opts = append(opts, nats.Timeout(timeout))
	} else {
		opts = append(opts, nats.RetryOnFailedConnect(true))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}
