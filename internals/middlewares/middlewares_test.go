package middlewares

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func get(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func ok(c *fiber.Ctx) error { return c.SendString("ok") }

func TestDevOnly(t *testing.T) {
	app := fiber.New()
	app.Get("/dev", DevOnly(true), ok)
	app.Get("/prod", DevOnly(false), ok)

	resp, _ := get(t, app, "/dev")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := get(t, app, "/prod")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "only available in development")
}

func TestWriteRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Get("/w", WriteRateLimiter(), ok)

	for i := 0; i < 20; i++ {
		resp, _ := get(t, app, "/w")
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i)
	}
	resp, body := get(t, app, "/w")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, `"error_code":"RATE_LIMITED"`)
}

func TestGlobalRateLimiterSkipsHealth(t *testing.T) {
	app := fiber.New()
	app.Use(GlobalRateLimiter())
	app.Get("/health", ok)
	app.Get("/x", ok)

	for i := 0; i < 100; i++ {
		resp, _ := get(t, app, "/x")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, _ := get(t, app, "/x")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	resp, _ = get(t, app, "/health")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRecoveryMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RecoveryMiddleware(zaptest.NewLogger(t)))
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })

	resp, _ := get(t, app, "/panic")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestRequestTimeout(t *testing.T) {
	app := fiber.New()
	app.Use(RequestTimeout(50*time.Millisecond, IsMultipart))
	app.Get("/", func(c *fiber.Ctx) error {
		deadline, hasDeadline := c.UserContext().Deadline()
		assert.True(t, hasDeadline)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, time.Second)
		select {
		case <-c.UserContext().Done():
			assert.ErrorIs(t, c.UserContext().Err(), context.DeadlineExceeded)
		case <-time.After(2 * time.Second):
			t.Error("context never expired")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, _ := get(t, app, "/")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequestTimeout_MultipartKeepsParentContext(t *testing.T) {
	app := fiber.New()
	app.Use(RequestTimeout(50*time.Millisecond, IsMultipart))
	app.Post("/upload", func(c *fiber.Ctx) error {
		_, hasDeadline := c.UserContext().Deadline()
		assert.False(t, hasDeadline)
		time.Sleep(100 * time.Millisecond)
		assert.NoError(t, c.UserContext().Err())
		return c.SendStatus(fiber.StatusCreated)
	})

	body := "--xyz\r\nContent-Disposition: form-data; name=\"location\"\r\n\r\nTehran\r\n--xyz--\r\n"
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, "multipart/form-data; boundary=xyz")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	app2 := fiber.New()
	app2.Use(RequestTimeout(50*time.Millisecond, IsMultipart))
	app2.Post("/upload", func(c *fiber.Ctx) error {
		_, hasDeadline := c.UserContext().Deadline()
		assert.True(t, hasDeadline)
		return c.SendStatus(fiber.StatusCreated)
	})
	resp, err = app2.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCorsMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(CorsMiddleware([]string{"https://archive.example"}))
	app.Get("/", ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://archive.example")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "https://archive.example", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
