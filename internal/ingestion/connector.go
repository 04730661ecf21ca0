package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/gridpulse-lab/gridpulse/internal/core/retry"
	"github.com/gridpulse-lab/gridpulse/internal/observability/metrics"
)

const (
	defaultReconnectPeriod = 2 * time.Second
	defaultConnectTimeout  = 10 * time.Second
	defaultQuiesce         = 250 * time.Millisecond

	// Subscriptions are at-most-once. Upgrading the QoS would make the broker
	// redeliver and the store would get duplicate rows.
	subscribeQoS byte = 0
)

// State is the broker connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// MessageHandler consumes one broker message. *Session implements it.
type MessageHandler interface {
	HandleMessage(ctx context.Context, topic string, payload []byte) error
}

// ClientFactory builds the MQTT client. Tests swap in a fake.
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// ConnectorOptions configures the broker connection.
type ConnectorOptions struct {
	// BrokerURL is e.g. "tcp://172.16.202.63:1883".
	BrokerURL string
	Username  string
	Password  string

	// ClientIDPrefix gets a random suffix so restarts never collide with a
	// session the broker still holds.
	ClientIDPrefix string

	Topics []string

	ReconnectPeriod time.Duration
	ConnectTimeout  time.Duration

	// HandlerTimeout bounds the store work for a single message. Zero leaves
	// it to the store connection's own timeouts.
	HandlerTimeout time.Duration

	// Quiesce is how long Disconnect lets in-flight work on the client finish.
	Quiesce time.Duration

	Retry retry.Policy
}

func (o ConnectorOptions) normalized() ConnectorOptions {
	if o.ReconnectPeriod <= 0 {
		o.ReconnectPeriod = defaultReconnectPeriod
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.HandlerTimeout < 0 {
		o.HandlerTimeout = 0
	}
	if o.Quiesce <= 0 {
		o.Quiesce = defaultQuiesce
	}
	if o.ClientIDPrefix == "" {
		o.ClientIDPrefix = "gridpulse-"
	}
	return o
}

// ConnectorOption customizes a Connector.
type ConnectorOption func(*Connector)

// WithClientFactory replaces paho's mqtt.NewClient.
func WithClientFactory(f ClientFactory) ConnectorOption {
	return func(c *Connector) {
		if f != nil {
			c.newClient = f
		}
	}
}

// WithRetryOptions passes options through to the startup backoff.
func WithRetryOptions(opts ...retry.Option) ConnectorOption {
	return func(c *Connector) {
		c.retryOpts = append(c.retryOpts, opts...)
	}
}

// Connector keeps one subscription to the broker alive and feeds every
// message to a handler in arrival order.
type Connector struct {
	opts      ConnectorOptions
	handler   MessageHandler
	newClient ClientFactory
	retryOpts []retry.Option

	state atomic.Int32

	mu      sync.Mutex
	client  mqtt.Client
	baseCtx context.Context
}

// NewConnector creates a connector. It does not connect until Start.
func NewConnector(opts ConnectorOptions, handler MessageHandler, options ...ConnectorOption) *Connector {
	if handler == nil {
		panic("ingestion: handler must not be nil")
	}
	c := &Connector{
		opts:      opts.normalized(),
		handler:   handler,
		newClient: mqtt.NewClient,
		baseCtx:   context.Background(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// State reports the current connection state.
func (c *Connector) State() State {
	return State(c.state.Load())
}

func (c *Connector) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	metrics.SetBrokerState(int(s))
	if prev != s {
		slog.Debug("[MQTT] State changed", "from", prev.String(), "to", s.String())
	}
}

// Start connects under the retry policy. Subscriptions are (re)issued by the
// OnConnect handler, so they survive every automatic reconnect. Returns an
// error wrapping retry.ErrExhausted when the broker never accepted us.
func (c *Connector) Start(ctx context.Context) error {
	if len(c.opts.Topics) == 0 {
		return errors.New("no topics configured")
	}

	c.mu.Lock()
	if c.client != nil {
		c.mu.Unlock()
		return errors.New("connector already started")
	}
	// Message handling outlives the startup context; shutdown goes through Stop.
	c.baseCtx = context.WithoutCancel(ctx)
	client := c.newClient(c.clientOptions())
	c.client = client
	c.mu.Unlock()

	c.setState(StateConnecting)
	slog.Info("[MQTT] Connecting", "broker", c.opts.BrokerURL, "topics", strings.Join(c.opts.Topics, ","))

	backoff := retry.New(c.opts.Retry, c.retryOpts...)
	attempts, err := backoff.Do(ctx, "MQTT", func(ctx context.Context) error {
		metrics.ObserveConnectAttempt(metrics.TargetBroker)
		token := client.Connect()
		select {
		case <-token.Done():
			return token.Error()
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		c.setState(StateDisconnected)
		c.mu.Lock()
		c.client = nil
		c.mu.Unlock()
		return fmt.Errorf("failed to connect to broker: %w", err)
	}

	slog.Info("[MQTT] Connected", "broker", c.opts.BrokerURL, "attempts", attempts)
	return nil
}

// Stop disconnects from the broker. Messages already handed to the handler
// keep running; wait for them with Session.Drain.
func (c *Connector) Stop() {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()

	if client == nil {
		return
	}

	client.Disconnect(uint(c.opts.Quiesce / time.Millisecond))
	c.setState(StateDisconnected)
	slog.Info("[MQTT] Disconnected")
}

func (c *Connector) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.opts.BrokerURL)
	opts.SetClientID(c.opts.ClientIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	if c.opts.Username != "" {
		opts.SetUsername(c.opts.Username)
		opts.SetPassword(c.opts.Password)
	}

	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)
	opts.SetConnectTimeout(c.opts.ConnectTimeout)

	// paho backs off from 1s and doubles up to this cap, so the effective
	// reconnect period settles at ReconnectPeriod.
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(c.opts.ReconnectPeriod)

	// The first connect is retried by Start so that exhaustion is fatal.
	opts.SetConnectRetry(false)

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetReconnectingHandler(c.onReconnecting)
	return opts
}

func (c *Connector) onConnect(client mqtt.Client) {
	c.setState(StateConnected)

	filters := make(map[string]byte, len(c.opts.Topics))
	for _, topic := range c.opts.Topics {
		filters[topic] = subscribeQoS
	}

	token := client.SubscribeMultiple(filters, c.onMessage)
	if !token.WaitTimeout(c.opts.ConnectTimeout) {
		slog.Error("[MQTT] Subscribe timed out", "topics", c.opts.Topics)
		return
	}
	if err := token.Error(); err != nil {
		slog.Error("[MQTT] Subscribe failed", "topics", c.opts.Topics, "error", err)
		return
	}
	slog.Info("[MQTT] Subscribed", "topics", c.opts.Topics, "qos", subscribeQoS)
}

func (c *Connector) onConnectionLost(_ mqtt.Client, err error) {
	c.setState(StateReconnecting)
	slog.Warn("[MQTT] Connection lost", "error", err)
}

func (c *Connector) onReconnecting(_ mqtt.Client, _ *mqtt.ClientOptions) {
	c.setState(StateReconnecting)
	slog.Info("[MQTT] Reconnecting", "broker", c.opts.BrokerURL)
}

// onMessage runs on paho's single ordered router goroutine, so messages are
// handled one at a time in arrival order.
func (c *Connector) onMessage(_ mqtt.Client, msg mqtt.Message) {
	c.mu.Lock()
	base := c.baseCtx
	c.mu.Unlock()

	ctx := base
	if c.opts.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, c.opts.HandlerTimeout)
		defer cancel()
	}

	// Errors are logged and counted by the handler; the message is dropped.
	_ = c.handler.HandleMessage(ctx, msg.Topic(), msg.Payload())
}
