package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(2, 2) // 2 requests per second, burst of 2

	router := gin.New()
	router.Use(RateLimit(rl))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// First two requests should succeed
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Third request should be rate limited
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiterPrune(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.getLimiter("ip:a")
	now = now.Add(5 * time.Minute)
	rl.getLimiter("ip:b")

	assert.Equal(t, 1, rl.Prune(time.Minute))
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "ip:b")
}

type mockWindowLimiter struct {
	mock.Mock
}

func (m *mockWindowLimiter) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestSharedRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		allowed  bool
		err      error
		wantCode int
	}{
		{"allowed", true, nil, http.StatusOK},
		{"limited", false, nil, http.StatusTooManyRequests},
		{"counter failure passes through", false, errors.New("redis down"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wl := new(mockWindowLimiter)
			wl.On("CheckRateLimit", mock.Anything, "ip:192.0.2.1", int64(10), time.Minute).Return(tt.allowed, tt.err)

			router := gin.New()
			router.Use(SharedRateLimit(wl, 10, time.Minute))
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			wl.AssertExpectations(t)
		})
	}
}
