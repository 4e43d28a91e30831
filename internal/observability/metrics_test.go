package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/drinks", "GET", 200, time.Millisecond)
	m.RecordRequest("/drinks", "GET", 200, time.Millisecond)
	m.RecordError("/drinks/:id", "DELETE", "NOT_FOUND")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/drinks|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/drinks/:id|DELETE|NOT_FOUND"])

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, 0)
	nilMetrics.RecordError("/", "GET", "X")
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRequestLoggerAssignsRequestID(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/drinks", func(c *fiber.Ctx) error {
		return c.SendString(RequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/drinks", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	id := resp.Header.Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, string(body))
	assert.Equal(t, int64(1), metrics.Snapshot().Requests["/drinks|GET|200"])

	req := httptest.NewRequest("GET", "/drinks", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Header.Get(RequestIDHeader))
}
