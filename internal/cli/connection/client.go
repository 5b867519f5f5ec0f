package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/minikv/pkg/resp"
)

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("connection: client closed")

// Client is a single RESP connection to a minikv server. It is not safe
// for concurrent use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	buf     []byte
	out     []byte
}

// Dial connects to the server at addr. A zero timeout uses DefaultTimeout.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command and waits for its reply. A server error reply is
// returned as a Reply, not as an error.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Reply, error) {
	if c.conn == nil {
		return resp.Reply{}, ErrClosed
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp.Reply{}, err
	}

	c.out = resp.AppendCommandStrings(c.out[:0], args...)
	if _, err := c.conn.Write(c.out); err != nil {
		return resp.Reply{}, fmt.Errorf("send: %w", err)
	}

	return c.readReply()
}

func (c *Client) readReply() (resp.Reply, error) {
	chunk := make([]byte, 4096)
	for {
		if len(c.buf) > 0 {
			reply, n, err := resp.DecodeReply(c.buf)
			if err == nil {
				c.buf = c.buf[n:]
				return reply, nil
			}
			if !errors.Is(err, resp.ErrIncomplete) {
				return resp.Reply{}, fmt.Errorf("decode reply: %w", err)
			}
		}

		n, err := c.conn.Read(chunk)
		c.buf = append(c.buf, chunk[:n]...)
		if err != nil && n == 0 {
			return resp.Reply{}, fmt.Errorf("receive: %w", err)
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
