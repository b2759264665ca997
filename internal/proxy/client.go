package proxy

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
)

// SplitAddress maps "unix:/path" to a unix socket and anything else to TCP.
func SplitAddress(addr string) (network, address string) {
	if rest, ok := strings.CutPrefix(addr, "unix:"); ok {
		return "unix", rest
	}
	return "tcp", addr
}

// Client sends requests over one connection.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	next int64
}

// Dial connects to addr, a host:port or unix:/path.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	network, address := SplitAddress(addr)
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Do sends one request and waits for its response.
func (c *Client) Do(opts string, source []byte) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	req := &Request{ID: c.next, Options: opts, Source: source}
	if err := WriteRequest(c.conn, req); err != nil {
		return nil, err
	}
	resp, err := ReadResponse(c.conn)
	if err != nil {
		return nil, err
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("proxy: response for request %d, expected %d", resp.ID, req.ID)
	}
	return resp, nil
}

// Shutdown asks the server to stop.
func (c *Client) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteRequest(c.conn, &Request{ID: ShutdownID})
}

func (c *Client) Close() error { return c.conn.Close() }
