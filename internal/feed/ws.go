package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultStaleAfter         = 2 * time.Second
	defaultReconnectPerSecond = 0.5
	writeWait                 = 5 * time.Second
)

// ClientConfig configures the websocket bridge client.
type ClientConfig struct {
	// URL is the bridge endpoint publishing snapshot frames, e.g.
	// ws://127.0.0.1:9877/agent.
	URL string
	// StaleAfter bounds how long a cached frame counts as authoritative.
	StaleAfter time.Duration
	// ReconnectPerSecond limits dial attempts after a dropped connection.
	ReconnectPerSecond float64
	Logger             *logrus.Logger
}

func (c ClientConfig) normalized() ClientConfig {
	if c.StaleAfter <= 0 {
		c.StaleAfter = defaultStaleAfter
	}
	if c.ReconnectPerSecond <= 0 {
		c.ReconnectPerSecond = defaultReconnectPerSecond
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}

// snapshotFrame is the wire shape of one bridge update.
type snapshotFrame struct {
	Type     string   `json:"type"`
	Snapshot Snapshot `json:"snapshot"`
}

// commandFrame carries one movement primitive to the bridge.
type commandFrame struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// Client subscribes to the bridge process that mirrors the game client's
// position, yaw, and combat flag, and pushes movement primitives back over
// the same connection. The most recent frame is cached so tick-rate readers
// never block on the socket.
//
// Client implements both Source and the input controller surface.
type Client struct {
	cfg     ClientConfig
	limiter *rate.Limiter

	mu         sync.Mutex
	conn       *websocket.Conn
	latest     Snapshot
	receivedAt time.Time
	hasFrame   bool
}

// NewClient builds a client; Run must be started for frames to arrive.
func NewClient(cfg ClientConfig) *Client {
	cfg = cfg.normalized()
	return &Client{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.ReconnectPerSecond), 1),
	}
}

// Run dials the bridge and consumes frames until the context is cancelled,
// redialing through the rate limiter after any disconnect.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			c.cfg.Logger.WithField("url", c.cfg.URL).WithError(err).Warn("bridge dial failed")
			continue
		}
		c.cfg.Logger.WithField("url", c.cfg.URL).Info("bridge connected")

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.readLoop(ctx, conn)

		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.cfg.Logger.Warn("bridge disconnected, retrying")
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame snapshotFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.cfg.Logger.WithError(err).Debug("dropping malformed bridge frame")
			continue
		}
		if frame.Type != "snapshot" {
			continue
		}

		c.mu.Lock()
		c.latest = frame.Snapshot
		c.receivedAt = time.Now()
		c.hasFrame = true
		c.mu.Unlock()
	}
}

// Snapshot returns the cached frame while it is fresh enough to act on.
func (c *Client) Snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasFrame || time.Since(c.receivedAt) > c.cfg.StaleAfter {
		return Snapshot{}, false
	}
	return c.latest, true
}

func (c *Client) send(command string) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(commandFrame{Type: "command", Command: command}); err != nil {
		c.cfg.Logger.WithField("command", command).WithError(err).Debug("command send failed")
	}
}

// MoveForward holds the forward primitive on the bridge.
func (c *Client) MoveForward() { c.send("moveForward") }

// MoveBackward holds the backward primitive on the bridge.
func (c *Client) MoveBackward() { c.send("moveBackward") }

// StrafeLeft holds the left strafe primitive on the bridge.
func (c *Client) StrafeLeft() { c.send("strafeLeft") }

// StrafeRight holds the right strafe primitive on the bridge.
func (c *Client) StrafeRight() { c.send("strafeRight") }

// TurnLeft holds the left turn primitive on the bridge.
func (c *Client) TurnLeft() { c.send("turnLeft") }

// TurnRight holds the right turn primitive on the bridge.
func (c *Client) TurnRight() { c.send("turnRight") }

// Jump taps the jump primitive on the bridge.
func (c *Client) Jump() { c.send("jump") }

// StopAll releases every held primitive on the bridge.
func (c *Client) StopAll() { c.send("stopAll") }
