// Package queue implements the transactional channel of the backbone on NATS
// JetStream. Publishes are synchronous: Send blocks until the stream has
// acknowledged persistence, making critical publication a backpressure point
// by design. Consumption uses durable pull consumers with explicit
// acknowledgment so that unacknowledged messages are redelivered.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/sih-ehealth/event-backbone/config"
	"github.com/sih-ehealth/event-backbone/events/routing"
)

// StreamName is the JetStream stream backing all transactional queues.
const StreamName = "HIE_EVENTS"

// Client is the long-lived, shared connection to the transactional channel.
// It is safe for concurrent use by the publisher and any number of listeners.
type Client struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *zap.Logger
}

// Connect dials the broker and ensures the backing stream exists with one
// subject per transactional queue. The stream uses work-queue retention:
// a message is removed once its consumer acknowledges it.
func Connect(cfg config.QueueConfig, logger *zap.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue broker at %s: %w", cfg.URL, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open JetStream context: %w", err)
	}

	c := &Client{nc: nc, js: js, logger: logger.Named("queue_client")}
	if err := c.ensureStream(); err != nil {
		nc.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureStream() error {
	_, err := c.js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream %s: %w", StreamName, err)
	}

	_, err = c.js.AddStream(&nats.StreamConfig{
		Name:      StreamName,
		Subjects:  routing.Queues(),
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", StreamName, err)
	}
	c.logger.Info("created transactional event stream", zap.String("stream", StreamName))
	return nil
}

// Send writes one serialized event to the named queue and blocks until the
// broker acknowledges the write. A returned error means the event was not
// accepted by the transactional channel.
func (c *Client) Send(ctx context.Context, queue string, payload []byte) error {
	if _, err := c.js.Publish(queue, payload, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queue, err)
	}
	return nil
}

// Close drains the connection.
func (c *Client) Close() error {
	c.nc.Close()
	return nil
}
