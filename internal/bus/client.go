// Package bus connects to the NATS message bus used by the "nats" speech
// backend, and can run an embedded server for single-host deployments.
package bus

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

var ErrNotConnected = errors.New("not connected to NATS")

// Client wraps a NATS connection with the few helpers the app needs.
type Client struct {
	conn *nats.Conn
}

func Connect(url, name string, timeout time.Duration) (*Client, error) {
	if url == "" {
		return nil, errors.New("no NATS server configured")
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("Bus: disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("Bus: reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	log.Printf("Bus: connected to %s", url)
	return &Client{conn: conn}, nil
}

func (c *Client) Publish(subject string, data []byte) error {
	if !c.Healthy() {
		return ErrNotConnected
	}
	return c.conn.Publish(subject, data)
}

func (c *Client) Healthy() bool {
	return c != nil && c.conn != nil && c.conn.Status() == nats.CONNECTED
}

func (c *Client) Conn() *nats.Conn {
	return c.conn
}

func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	log.Printf("Bus: closing connection")
	_ = c.conn.Drain()
	c.conn.Close()
}
