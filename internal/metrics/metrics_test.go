package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.CartMutation("add")
	r.RecommendationServed("local")
	r.RemoteFallback("timeout")
	r.BoxesPacked(3)
	assert.Nil(t, r.Registry())
}

func TestRecorder_Counts(t *testing.T) {
	r := New()
	r.CartMutation("add")
	r.CartMutation("add")
	r.RecommendationServed("remote")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cartMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.recommendations.WithLabelValues("remote")))
}

func TestMetricsRoute(t *testing.T) {
	r := New()
	app := fiber.New()
	app.Use(r.Middleware())
	app.Get("/api/v1/product/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	r.RegisterRoutes(app)

	_, err := app.Test(httptest.NewRequest("GET", "/api/v1/product/7", nil))
	require.NoError(t, err)

	res, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	body := string(b)
	assert.True(t, strings.Contains(body, `pet_shop_http_requests_total{method="GET",route="/api/v1/product/:id",status="200"} 1`), body)
}
