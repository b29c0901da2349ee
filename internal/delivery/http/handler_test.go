package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/9endu/Dealicious/config"
	"github.com/9endu/Dealicious/internal/version"
)

func TestNewHandler_DefaultLimitMatchesConfig(t *testing.T) {
	assert.Equal(t, config.DefaultMaxScreenshotBytes, NewHandler(nil, 0).maxScreenshotBytes)
	assert.Equal(t, config.DefaultMaxScreenshotBytes, NewHandler(nil, -1).maxScreenshotBytes)
	assert.Equal(t, int64(2048), NewHandler(nil, 2048).maxScreenshotBytes)
}

func TestHealthCheck_ReportsBuildVersion(t *testing.T) {
	router := SetupRouter(testConfig(), NewHandler(&stubVerifier{ready: true}, 0))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, version.Service, body["service"])
	assert.Equal(t, version.Version, body["version"])
}
