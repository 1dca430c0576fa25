// Package ws is the client side of the table socket: one reader loop and one
// writer goroutine per connection.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("connection closed")
var ErrBadOrigin = errors.New("origin must be http, https, ws or wss")

// EndpointURL joins the page origin and the socket path, switching the scheme
// to ws or wss.
func EndpointURL(origin, path string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadOrigin, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: %q", ErrBadOrigin, origin)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrBadOrigin, origin)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return u.String(), nil
}

type Options struct {
	Header       http.Header // cookies and other handshake headers
	WriteTimeout time.Duration
	ReadLimit    int64
	Logger       *zap.Logger
}

type Client struct {
	conn         *websocket.Conn
	out          chan []byte
	done         chan struct{}
	once         sync.Once
	writeTimeout time.Duration
	log          *zap.Logger
}

func Dial(ctx context.Context, endpoint string, opts Options) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, endpoint, &websocket.DialOptions{HTTPHeader: opts.Header})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	if opts.ReadLimit > 0 {
		conn.SetReadLimit(opts.ReadLimit)
	}

	c := &Client{
		conn:         conn,
		out:          make(chan []byte, 16),
		done:         make(chan struct{}),
		writeTimeout: opts.WriteTimeout,
		log:          opts.Logger,
	}
	if c.writeTimeout <= 0 {
		c.writeTimeout = 3 * time.Second
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}

	go c.writer()
	return c, nil
}

// Send queues v as one JSON text frame.
func (c *Client) Send(ctx context.Context, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %T: %w", v, err)
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.out <- payload:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) writer() {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.out:
			ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				c.log.Warn("write failed", zap.Error(err))
				c.markDone()
				return
			}
		}
	}
}

// Run reads text frames until the connection ends. A normal close by the
// server or a cancelled ctx returns nil.
func (c *Client) Run(ctx context.Context, onFrame func([]byte)) error {
	defer c.markDone()
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if typ != websocket.MessageText {
			c.log.Debug("ignoring binary frame", zap.Int("bytes", len(data)))
			continue
		}
		onFrame(data)
	}
}

func (c *Client) Close() error {
	c.markDone()
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (c *Client) markDone() {
	c.once.Do(func() { close(c.done) })
}
