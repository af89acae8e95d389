// Package rpc is a JSON-RPC 2.0 client for Substrate nodes and the
// chopsticks dev RPC, over HTTP or WebSocket.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/ratelimit"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
)

const defaultTimeout = 30 * time.Second

type Options struct {
	Ledger model.Ledger
	// Timeout bounds a single call. Zero means defaultTimeout.
	Timeout time.Duration
	// Limiter paces calls. Nil is unlimited.
	Limiter *ratelimit.Limiter
	// HTTPClient overrides the HTTP transport client.
	HTTPClient *http.Client
}

type transport interface {
	roundTrip(ctx context.Context, req Request) (*Response, error)
	close() error
}

type Client struct {
	transport transport
	endpoint  string
	opts      Options
	requestID atomic.Int64
	logger    *slog.Logger
}

// NewClient returns a client that POSTs each call to an HTTP(S) endpoint.
func NewClient(endpoint string, opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		transport: &httpTransport{client: httpClient, endpoint: endpoint},
		endpoint:  endpoint,
		opts:      opts,
		logger:    logger.With("component", "substrate_rpc", "ledger", opts.Ledger.String()),
	}
}

// Dial picks the transport from the endpoint scheme. ws and wss endpoints
// open a WebSocket connection immediately.
func Dial(ctx context.Context, endpoint string, opts Options, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse %s endpoint: %w", opts.Ledger, err)
	}
	switch u.Scheme {
	case "http", "https":
		return NewClient(endpoint, opts, logger), nil
	case "ws", "wss":
		if opts.Timeout <= 0 {
			opts.Timeout = defaultTimeout
		}
		dialCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		ws, err := dialWebSocket(dialCtx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("connect %s endpoint %s: %w", opts.Ledger, endpoint, err)
		}
		return &Client{
			transport: ws,
			endpoint:  endpoint,
			opts:      opts,
			logger:    logger.With("component", "substrate_rpc", "ledger", opts.Ledger.String()),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported %s endpoint scheme %q", opts.Ledger, u.Scheme)
	}
}

func (c *Client) Ledger() model.Ledger {
	return c.opts.Ledger
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) Close() error {
	return c.transport.close()
}

func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if err := c.opts.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	if params == nil {
		params = []interface{}{}
	}
	req := Request{
		JSONRPC: "2.0",
		ID:      int(c.requestID.Add(1)),
		Method:  method,
		Params:  params,
	}

	start := time.Now()
	resp, err := c.transport.roundTrip(ctx, req)
	if err == nil && resp.Error != nil {
		err = resp.Error
	}
	ratelimit.RecordRPCCall(c.opts.Ledger, method, err)
	if err != nil {
		c.logger.Debug("rpc call failed", "method", method, "id", req.ID, "duration", time.Since(start), "error", err)
		return nil, err
	}
	c.logger.Debug("rpc call", "method", method, "id", req.ID, "duration", time.Since(start))
	return resp.Result, nil
}

type httpTransport struct {
	client   *http.Client
	endpoint string
}

func (t *httpTransport) roundTrip(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &rpcResp, nil
}

func (t *httpTransport) close() error {
	t.client.CloseIdleConnections()
	return nil
}
