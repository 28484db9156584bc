package symbolic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"yqhp/math-engine/pkg/logger"
)

// Config holds the configuration for the collaborator client.
type Config struct {
	// BaseURL is the collaborator address (e.g., "http://127.0.0.1:8001").
	BaseURL string

	// Timeout bounds every request.
	Timeout time.Duration

	// Logger receives request logs. Defaults to the process logger.
	Logger *zap.Logger
}

// DefaultConfig returns a default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://127.0.0.1:8001",
		Timeout: 10 * time.Second,
	}
}

// Client talks to the symbolic collaborator over HTTP.
type Client struct {
	config *Config
	agent  *fiber.Client
	log    *zap.Logger
}

// NewClient creates a new collaborator client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	log := config.Logger
	if log == nil {
		log = logger.L()
	}

	return &Client{
		config: config,
		agent:  fiber.AcquireClient(),
		log:    log.Named("symbolic"),
	}
}

// Compute sends req to the endpoint named by its operation.
func (c *Client) Compute(ctx context.Context, req Request) (*Response, error) {
	if !req.Operation.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOperation, req.Operation)
	}
	if req.Operation.TakesVariable() && req.Variable == "" {
		req.Variable = DefaultVariable
	}
	return c.post(ctx, "/"+req.Operation.String(), req)
}

// Verify asks whether expression simplifies to zero.
func (c *Client) Verify(ctx context.Context, expression string) (bool, *Response, error) {
	resp, err := c.post(ctx, "/verify", Request{Expression: expression})
	if err != nil {
		return false, nil, err
	}
	return resp.Verified != nil && *resp.Verified, resp, nil
}

// Health checks that the collaborator is online.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	httpReq := c.agent.Get(c.url("/health"))
	httpReq.Timeout(c.timeout(ctx))

	statusCode, respBody, errs := httpReq.Bytes()
	if len(errs) > 0 {
		return nil, classify(errs[0])
	}
	if statusCode != fiber.StatusOK {
		return nil, NewServiceError(statusCode, "health check failed")
	}

	var resp HealthResponse
	if err := sonic.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal health response: %w", err)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	httpReq := c.agent.Post(c.url(path))
	httpReq.Timeout(c.timeout(ctx))
	httpReq.Body(body)
	httpReq.Set("Content-Type", "application/json")

	statusCode, respBody, errs := httpReq.Bytes()
	if len(errs) > 0 {
		err := classify(errs[0])
		c.log.Warn("symbolic request failed",
			zap.String("path", path),
			zap.String("expression", req.Expression),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	if statusCode != fiber.StatusOK {
		var errResp errorResponse
		if err := sonic.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, NewServiceError(statusCode, errResp.Error)
		}
		return nil, NewServiceError(statusCode, fmt.Sprintf("unexpected status %d", statusCode))
	}

	var resp Response
	if err := sonic.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.log.Debug("symbolic request",
		zap.String("path", path),
		zap.String("expression", req.Expression),
		zap.String("result", resp.Result),
		zap.Duration("elapsed", time.Since(start)))
	return &resp, nil
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}

// timeout returns the configured timeout, shortened to the context deadline.
func (c *Client) timeout(ctx context.Context) time.Duration {
	timeout := c.config.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout <= 0 {
			timeout = remaining
		}
	}
	return timeout
}

func classify(err error) error {
	if errors.Is(err, fasthttp.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
