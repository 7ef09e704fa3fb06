package remote

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/256dpi/gomqtt/client"
	"github.com/256dpi/gomqtt/packet"
	"github.com/google/uuid"
)

// DefaultQueue is the number of parsed commands buffered for the control
// loop. Commands arriving while it is full are dropped.
const DefaultQueue = 16

// Options configures a Client.
type Options struct {
	Broker   string
	ClientID string // Empty selects dacviz-<random>
	Prefix   string
	Queue    int
}

// Client subscribes to the play and control topics and delivers parsed
// commands on a channel.
type Client struct {
	svc      *client.Service
	broker   string
	clientID string
	prefix   string

	commands chan Command
	online   bool
	closed   bool
	mu       sync.Mutex
	stopOnce sync.Once
	logger   *slog.Logger
}

// New creates a client. Nothing is sent until Start.
func New(opts Options) *Client {
	if opts.ClientID == "" {
		opts.ClientID = "dacviz-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	}
	if opts.Queue <= 0 {
		opts.Queue = DefaultQueue
	}

	c := &Client{
		svc:      client.NewService(100),
		broker:   opts.Broker,
		clientID: opts.ClientID,
		prefix:   strings.TrimSuffix(opts.Prefix, "/"),
		commands: make(chan Command, opts.Queue),
		logger:   slog.Default().With("component", "remote", "client_id", opts.ClientID),
	}

	play, control := Topics(c.prefix)
	c.svc.Subscribe(play, 0)
	c.svc.Subscribe(control, 0)

	c.svc.OnlineCallback = func(resumed bool) {
		c.setOnline(true)
		c.logger.Info("online", "broker", c.broker, "resumed", resumed)
	}
	c.svc.OfflineCallback = func() {
		c.setOnline(false)
		c.logger.Warn("offline", "broker", c.broker)
	}
	c.svc.ErrorCallback = func(err error) {
		c.logger.Error("mqtt error", "error", err)
	}
	c.svc.MessageCallback = func(msg *packet.Message) error {
		c.handle(msg.Topic, msg.Payload)
		// Returning an error would tear the connection down.
		return nil
	}

	return c
}

// Start connects in the background. The service reconnects on its own.
func (c *Client) Start() {
	c.logger.Info("starting", "broker", c.broker, "prefix", c.prefix)
	c.svc.Start(client.NewConfigWithClientID(c.broker, c.clientID))
}

// Stop disconnects and closes the command channel.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		c.svc.Stop(true)
		c.setOnline(false)
		c.mu.Lock()
		c.closed = true
		close(c.commands)
		c.mu.Unlock()
	})
}

// Commands returns the channel parsed commands are delivered on. It is
// closed by Stop.
func (c *Client) Commands() <-chan Command {
	return c.commands
}

// Online reports whether the broker connection is up.
func (c *Client) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Publish sends payload to <prefix>/<suffix>.
func (c *Client) Publish(suffix string, payload string) {
	c.svc.Publish(c.prefix+"/"+suffix, []byte(payload), 0, false)
}

func (c *Client) setOnline(v bool) {
	c.mu.Lock()
	c.online = v
	c.mu.Unlock()
}

// handle parses and enqueues one message without blocking the service.
func (c *Client) handle(topic string, payload []byte) {
	cmd, err := Parse(c.prefix, topic, payload)
	if err != nil {
		c.logger.Warn("ignoring message", "topic", topic, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.commands <- cmd:
		c.logger.Debug("command", "command", cmd.String())
	default:
		c.logger.Warn("command queue full, dropping", "command", cmd.String())
	}
}
