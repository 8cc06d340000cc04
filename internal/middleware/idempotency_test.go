package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideflux/internal/redis"
	"rideflux/internal/tests"
)

func newIdempotencyRouter(store redis.IdempotencyStoreInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Idempotency(store))
	router.POST("/v1/payments", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"payment_id": "pay-1", "status": "succeeded"})
	})
	router.POST("/v1/receipts", func(c *gin.Context) {
		c.String(http.StatusOK, "receipt,total\npay-1,170.00\n")
	})
	return router
}

func TestIdempotency_ReplaysCachedJSONResponse(t *testing.T) {
	store := tests.NewMockIdempotencyStore()
	router := newIdempotencyRouter(store)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(first, req)

	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotent-Replay"))

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/payments", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(second, req)

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replay"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_PassesNonJSONThroughUncached(t *testing.T) {
	store := tests.NewMockIdempotencyStore()
	router := newIdempotencyRouter(store)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/receipts", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	cached, err := store.Get(context.Background(), "key-1", "/v1/receipts")
	require.NoError(t, err)
	assert.Nil(t, cached, "non-JSON body must not be cached")

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/receipts", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(second, req)

	assert.Equal(t, http.StatusOK, second.Code)
	assert.Empty(t, second.Header().Get("X-Idempotent-Replay"))
}

func TestIdempotency_IgnoresRequestsWithoutKey(t *testing.T) {
	store := tests.NewMockIdempotencyStore()
	router := newIdempotencyRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/payments", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	cached, err := store.Get(context.Background(), "", "/v1/payments")
	require.NoError(t, err)
	assert.Nil(t, cached)
}
