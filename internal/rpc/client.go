package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// CodeIdentityNotFound is the daemon's error code for a name or address
// that does not resolve to a registered identity.
const CodeIdentityNotFound = -5

// ErrUnavailable is returned when both the primary and fallback endpoints
// fail for transport reasons.
var ErrUnavailable = errors.New("chain rpc unavailable")

// Error is a structured application-level error returned by the daemon.
// It is authoritative: receiving one never triggers a fallback retry.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsIdentityNotFound reports whether err is the daemon's identity-not-found error.
func IsIdentityNotFound(err error) bool {
	var rpcErr *Error
	return errors.As(err, &rpcErr) && rpcErr.Code == CodeIdentityNotFound
}

// Config configures a Client.
type Config struct {
	PrimaryURL  string
	FallbackURL string // optional; empty disables failover
	User        string
	Password    string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Client is a JSON-RPC 1.0 client for the chain daemon with single-retry
// failover to a secondary endpoint on transport failures.
type Client struct {
	primary    string
	fallback   string
	user       string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new chain RPC client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.PrimaryURL == "" {
		return nil, fmt.Errorf("primary rpc url cannot be empty")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		primary:  cfg.PrimaryURL,
		fallback: cfg.FallbackURL,
		user:     cfg.User,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.WithGroup("chain_rpc"),
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// Call invokes method against the primary endpoint, retrying once against
// the fallback endpoint on transport failure. A structured daemon error is
// returned as *Error without any retry. The result is unmarshaled into target
// when target is non-nil.
func (c *Client) Call(ctx context.Context, method string, params []any, target any) error {
	err := c.callEndpoint(ctx, c.primary, method, params, target)
	if err == nil {
		return nil
	}

	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return err
	}

	if c.fallback == "" {
		c.logger.Error("rpc transport failure, no fallback configured", "method", method, "error", err)
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	c.logger.Warn("primary rpc endpoint failed, retrying against fallback", "method", method, "error", err)

	err = c.callEndpoint(ctx, c.fallback, method, params, target)
	if err == nil {
		return nil
	}
	if errors.As(err, &rpcErr) {
		return err
	}

	c.logger.Error("fallback rpc endpoint failed", "method", method, "error", err)
	return fmt.Errorf("%w: %s", ErrUnavailable, err)
}

func (c *Client) callEndpoint(ctx context.Context, endpoint, method string, params []any, target any) error {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "1.0",
		ID:      "vtimestamp",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}

	var parsed rpcResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		// Non-2xx with no structured error body is a transport failure.
		return fmt.Errorf("decoding %s response (status %d): %w", method, resp.StatusCode, err)
	}

	if parsed.Error != nil {
		return parsed.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("calling %s: unexpected status %d", method, resp.StatusCode)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(parsed.Result, target); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}
