package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// webOrigins is the frontend allow-list: the production site plus any local dev port
var webOrigins = []string{"https://dealicious.in", "http://localhost:*"}

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{"production frontend", "https://dealicious.in", webOrigins, true},
		{"local dev server", "http://localhost:3000", webOrigins, true},
		{"local dev server on another port", "http://localhost:5173", webOrigins, true},
		{"http variant of production host", "http://dealicious.in", webOrigins, false},
		{"lookalike host", "https://dealicious.in.evil.com", webOrigins, false},
		{"subdomain is not listed", "https://admin.dealicious.in", webOrigins, false},
		{"unknown site", "https://evil.com", webOrigins, false},
		{"empty origin", "", webOrigins, false},
		{"empty allowed list", "http://localhost:3000", nil, false},
		{"default config origin", "http://localhost:3000", []string{"http://localhost:3000"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAllowedOrigin(tt.origin, tt.allowedOrigins))
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		origin     string
		method     string
		wantStatus int
		wantCORS   bool
	}{
		{"frontend GET", "https://dealicious.in", "GET", http.StatusOK, true},
		{"frontend POST", "https://dealicious.in", "POST", http.StatusOK, true},
		{"dev server preflight", "http://localhost:3000", "OPTIONS", http.StatusNoContent, true},
		{"foreign site still served without CORS", "https://evil.com", "POST", http.StatusOK, false},
		{"no origin header", "", "POST", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware(webOrigins))
			router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
			router.POST("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCORS {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
				assert.Equal(t, "POST, GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORSMiddleware_PreflightFromFrontend(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORSMiddleware(webOrigins))
	router.POST("/api/v1/offers/verify", func(c *gin.Context) {
		t.Error("preflight must not reach the handler")
	})

	req := httptest.NewRequest("OPTIONS", "/api/v1/offers/verify", nil)
	req.Header.Set("Origin", "https://dealicious.in")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dealicious.in", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
}

func TestIPRateLimiter(t *testing.T) {
	t.Run("allows burst then limits", func(t *testing.T) {
		rl := NewIPRateLimiter(1, 3)
		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("10.0.0.1"), "request %d", i)
		}
		assert.False(t, rl.Allow("10.0.0.1"))
	})

	t.Run("limits each IP independently", func(t *testing.T) {
		rl := NewIPRateLimiter(1, 1)
		assert.True(t, rl.Allow("10.0.0.1"))
		assert.False(t, rl.Allow("10.0.0.1"))
		assert.True(t, rl.Allow("10.0.0.2"))
		assert.Equal(t, 2, rl.Len())
	})

	t.Run("burst defaults to rate", func(t *testing.T) {
		rl := NewIPRateLimiter(2, 0)
		assert.Equal(t, 2, rl.burst)

		rl = NewIPRateLimiter(0.5, 0)
		assert.Equal(t, 1, rl.burst)
	})

	t.Run("sweeps idle IPs", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		rl := NewIPRateLimiter(1, 1)
		rl.now = func() time.Time { return now }
		rl.lastSweep = now

		rl.Allow("10.0.0.1")
		rl.Allow("10.0.0.2")
		require.Equal(t, 2, rl.Len())

		now = now.Add(5 * time.Minute)
		rl.Allow("10.0.0.2")
		assert.Equal(t, 2, rl.Len())

		now = now.Add(limiterIdleTTL)
		rl.Allow("10.0.0.3")
		assert.Equal(t, 1, rl.Len())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limiter *IPRateLimiter) *gin.Engine {
		router := gin.New()
		router.Use(RateLimitMiddleware(limiter))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})
		return router
	}

	send := func(router *gin.Engine) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "198.51.100.4:5555"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("nil limiter passes everything", func(t *testing.T) {
		router := newRouter(nil)
		for i := 0; i < 10; i++ {
			assert.Equal(t, http.StatusOK, send(router).Code)
		}
	})

	t.Run("rejects with 429 and Retry-After", func(t *testing.T) {
		router := newRouter(NewIPRateLimiter(1, 1))
		assert.Equal(t, http.StatusOK, send(router).Code)

		w := send(router)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate limit")
	})
}

func TestLoggerAndRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RecoveryMiddleware(), LoggerMiddleware())
	router.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusTeapot, "short and stout")
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ok?x=1", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
