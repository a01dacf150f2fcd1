// Package client sends correlation requests to a pnlcorr server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"pnlcorr/internal/correlation"
	"pnlcorr/internal/pnl"
	"pnlcorr/internal/wire"
)

// ServerError is a non-200 reply. Its message is the response body as sent.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string { return e.Body }

// Client talks to one server.
type Client struct {
	url  string
	http *http.Client
}

// ParseServer checks that addr has the form host:port.
func ParseServer(addr string) (host string, port int, err error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("server %q must be host:port: %w", addr, err)
	}
	if host == "" {
		return "", 0, fmt.Errorf("server %q has no host", addr)
	}
	port, err = strconv.Atoi(p)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("server %q has invalid port %q", addr, p)
	}
	return host, port, nil
}

// New returns a client for addr (host:port). A nil hc uses http.DefaultClient.
func New(addr string, hc *http.Client) (*Client, error) {
	host, port, err := ParseServer(addr)
	if err != nil {
		return nil, err
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		url:  "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/",
		http: hc,
	}, nil
}

// Query asks the server for the top correlated resident series of every
// series in pool.
func (c *Client) Query(ctx context.Context, pool *pnl.Pool, top int, w pnl.Window) (*correlation.TopK, error) {
	req, err := wire.NewRequest(pool, top, w)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: string(out)}
	}
	return wire.DecodeResult(out)
}
