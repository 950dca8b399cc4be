package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CircuitState describes the publish circuit breaker state.
type CircuitState int32

const (
	// StateClosed allows publishes through.
	StateClosed CircuitState = iota
	// StateOpen rejects publishes until openTimeout elapses.
	StateOpen
	// StateHalfOpen lets a single probe publish through.
	StateHalfOpen
)

const (
	defaultMaxFailures = 5
	defaultOpenTimeout = 60 * time.Second
	maxReconnectDelay  = 30 * time.Second
)

// ErrCircuitOpen is returned when the publish circuit breaker is open.
var ErrCircuitOpen = errors.New("amqp circuit breaker open")

// errClientClosed is returned when an operation races with Close.
var errClientClosed = errors.New("amqp client closed")

// Client wraps an AMQP connection and channel bound to the contribution
// sync exchange and queue. Publish failures trip a circuit breaker so a
// broker outage does not stall contribution recording.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel

	failureCount atomic.Int32
	state        atomic.Int32
	lastFailure  atomic.Int64
	redialing    atomic.Bool

	maxFailures int32
	openTimeout time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient connects to the broker and declares the sync exchange and
// durable queue.
func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		maxFailures:  defaultMaxFailures,
		openTimeout:  defaultOpenTimeout,
		done:         make(chan struct{}),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(
		queue.Name,
		c.queueName, // routing key
		c.exchangeName,
		false,
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()
	return nil
}

// reconnect closes the broken connection and dials again with capped
// exponential backoff. It gives up once the context is cancelled or the
// client is closed.
func (c *Client) reconnect(ctx context.Context) error {
	c.closeConn()

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return errClientClosed
		case <-time.After(exponentialBackoff(attempt)):
		}

		if err := c.connect(); err == nil {
			return nil
		}
	}
}

// redialAsync starts a single background reconnect after a broken
// connection so later publishes and half-open probes have a live channel.
func (c *Client) redialAsync() {
	if !c.redialing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.redialing.Store(false)
		if err := c.reconnect(context.Background()); err != nil {
			slog.Warn("AMQP reconnect abandoned", "error", err)
		}
	}()
}

// exponentialBackoff returns the delay before reconnect attempt n,
// doubling from one second and capped at maxReconnectDelay.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := time.Second << uint(attempt)
	if d <= 0 || d > maxReconnectDelay {
		return maxReconnectDelay
	}
	return d
}

// isConnectionError reports whether err looks like a broken connection
// rather than a protocol-level failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"channel/connection is not open",
		"EOF",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) circuitState() CircuitState {
	return CircuitState(c.state.Load())
}

// allowPublish checks the breaker before a publish, moving an open
// circuit to half-open once the timeout has elapsed.
func (c *Client) allowPublish() bool {
	switch c.circuitState() {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		last := time.Unix(0, c.lastFailure.Load())
		if time.Since(last) >= c.openTimeout {
			c.state.CompareAndSwap(int32(StateOpen), int32(StateHalfOpen))
			return true
		}
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	c.failureCount.Store(0)
	c.state.Store(int32(StateClosed))
}

func (c *Client) recordFailure() {
	c.lastFailure.Store(time.Now().UnixNano())
	if c.circuitState() == StateHalfOpen {
		c.state.Store(int32(StateOpen))
		return
	}
	if c.failureCount.Add(1) >= c.maxFailures {
		c.state.Store(int32(StateOpen))
	}
}

// PublishContributionSync publishes a sync message for one recorded
// contribution. Messages are persistent so they survive broker restarts.
func (c *Client) PublishContributionSync(ctx context.Context, goalID, contributionID int64) error {
	if !c.allowPublish() {
		return ErrCircuitOpen
	}

	msg := NewContributionSyncMessage(goalID, contributionID)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize sync message: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()

	if channel == nil {
		c.recordFailure()
		c.redialAsync()
		return fmt.Errorf("failed to publish sync message: %w", amqp.ErrClosed)
	}

	err = channel.PublishWithContext(
		publishCtx,
		c.exchangeName,
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.redialAsync()
		}
		return fmt.Errorf("failed to publish sync message: %w", err)
	}

	c.recordSuccess()
	return nil
}

// ConsumeContributionSync consumes sync messages and invokes handler for
// each one. Messages are acked on success and requeued when the handler
// fails; malformed payloads are dropped. A dropped broker connection is
// redialed with backoff and consumption resumes on the new channel.
func (c *Client) ConsumeContributionSync(ctx context.Context, handler func(*ContributionSyncMessage) error) error {
	for {
		c.mu.Lock()
		channel := c.channel
		c.mu.Unlock()

		if channel == nil {
			if err := c.reconnect(ctx); err != nil {
				return err
			}
			continue
		}

		deliveries, err := channel.Consume(
			c.queueName,
			"",    // consumer tag
			false, // auto-ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			if !isConnectionError(err) {
				return fmt.Errorf("failed to start consuming: %w", err)
			}
			if err := c.reconnect(ctx); err != nil {
				return err
			}
			continue
		}

		closed, err := c.drainDeliveries(ctx, deliveries, handler)
		if err != nil {
			return err
		}
		if closed {
			slog.WarnContext(ctx, "AMQP delivery channel closed, reconnecting")
			if err := c.reconnect(ctx); err != nil {
				return err
			}
		}
	}
}

// drainDeliveries handles messages until the context ends or the broker
// closes the delivery channel. It reports closed=true in the latter case.
func (c *Client) drainDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery, handler func(*ContributionSyncMessage) error) (closed bool, err error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return true, nil
			}

			msg, err := ContributionSyncMessageFromJSON(delivery.Body)
			if err != nil {
				delivery.Nack(false, false)
				continue
			}

			if err := handler(msg); err != nil {
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Close stops any in-flight reconnect and closes the channel and
// connection. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if c.done != nil {
			close(c.done)
		}
	})
	c.closeConn()
	return nil
}
