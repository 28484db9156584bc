package symbolic

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestServer starts a fake collaborator speaking the service's JSON contract.
func setupTestServer(t *testing.T) string {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(HealthResponse{Status: "online", Service: "sympy"})
	})

	app.Post("/solve", func(c *fiber.Ctx) error {
		var req Request
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
		}
		if req.Expression == "" {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "Missing expression field"})
		}
		return c.JSON(Response{Result: "[7]", LaTeX: `\left[ 7\right]`, ExecutionTimeMs: 1.5})
	})

	app.Post("/differentiate", func(c *fiber.Ctx) error {
		var req Request
		if err := c.BodyParser(&req); err != nil {
			return err
		}
		return c.JSON(Response{Result: "3*" + req.Variable + "**2", LaTeX: "3 " + req.Variable + "^{2}"})
	})

	app.Post("/simplify", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "Internal error: boom"})
	})

	app.Post("/integrate", func(c *fiber.Ctx) error {
		time.Sleep(300 * time.Millisecond)
		return c.JSON(Response{Result: "x**2/2"})
	})

	app.Post("/verify", func(c *fiber.Ctx) error {
		verified := true
		return c.JSON(Response{Result: "0", LaTeX: "0", Verified: &verified})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(&Config{BaseURL: baseURL, Timeout: timeout, Logger: zap.NewNop()})
}

func TestNewClient(t *testing.T) {
	t.Run("with nil config uses defaults", func(t *testing.T) {
		client := NewClient(nil)
		assert.NotNil(t, client)
		assert.Equal(t, "http://127.0.0.1:8001", client.config.BaseURL)
		assert.Equal(t, 10*time.Second, client.config.Timeout)
	})

	t.Run("with custom config", func(t *testing.T) {
		client := newTestClient("http://sympy:9000/", time.Second)
		assert.Equal(t, "http://sympy:9000/solve", client.url("/solve"))
	})
}

func TestClient_Compute(t *testing.T) {
	baseURL := setupTestServer(t)
	client := newTestClient(baseURL, 2*time.Second)

	t.Run("solve", func(t *testing.T) {
		resp, err := client.Compute(context.Background(), Request{Expression: "3*x - 5 = 16", Operation: OpSolve})
		require.NoError(t, err)
		assert.Equal(t, "[7]", resp.Result)
		assert.Equal(t, `\left[ 7\right]`, resp.LaTeX)
		assert.Equal(t, 1500*time.Microsecond, resp.ExecutionTime())
	})

	t.Run("variable defaults to x", func(t *testing.T) {
		resp, err := client.Compute(context.Background(), Request{Expression: "x^3", Operation: OpDifferentiate})
		require.NoError(t, err)
		assert.Equal(t, "3*x**2", resp.Result)
	})

	t.Run("explicit variable", func(t *testing.T) {
		resp, err := client.Compute(context.Background(), Request{Expression: "t^3", Operation: OpDifferentiate, Variable: "t"})
		require.NoError(t, err)
		assert.Equal(t, "3*t**2", resp.Result)
	})

	t.Run("service error payload", func(t *testing.T) {
		_, err := client.Compute(context.Background(), Request{Expression: "x", Operation: OpSimplify})
		require.Error(t, err)

		var svcErr *ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, fiber.StatusInternalServerError, svcErr.Status)
		assert.Equal(t, "Internal error: boom", svcErr.Message)
	})

	t.Run("bad request", func(t *testing.T) {
		_, err := client.Compute(context.Background(), Request{Operation: OpSolve})
		var svcErr *ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, fiber.StatusBadRequest, svcErr.Status)
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		_, err := client.Compute(context.Background(), Request{Expression: "x", Operation: OpEvaluate})
		var svcErr *ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, fiber.StatusNotFound, svcErr.Status)
	})

	t.Run("invalid operation", func(t *testing.T) {
		_, err := client.Compute(context.Background(), Request{Expression: "x", Operation: "plot"})
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.Compute(ctx, Request{Expression: "x", Operation: OpSolve})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_Timeout(t *testing.T) {
	baseURL := setupTestServer(t)
	client := newTestClient(baseURL, 50*time.Millisecond)

	_, err := client.Compute(context.Background(), Request{Expression: "x", Operation: OpIntegrate})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_Unavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	client := newTestClient("http://"+addr, time.Second)
	_, err = client.Compute(context.Background(), Request{Expression: "x", Operation: OpSolve})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_VerifyAndHealth(t *testing.T) {
	baseURL := setupTestServer(t)
	client := newTestClient(baseURL, 2*time.Second)

	verified, resp, err := client.Verify(context.Background(), "sin(x)^2 + cos(x)^2 - 1")
	require.NoError(t, err)
	assert.True(t, verified)
	assert.Equal(t, "0", resp.Result)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "online", health.Status)
	assert.Equal(t, "sympy", health.Service)
}

func TestOperation(t *testing.T) {
	for _, op := range []Operation{OpEvaluate, OpSolve, OpDifferentiate, OpIntegrate, OpSimplify} {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, Operation("plot").Valid())
	assert.True(t, OpSolve.TakesVariable())
	assert.False(t, OpSimplify.TakesVariable())
}
