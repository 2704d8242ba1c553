package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("backoffice", "1.2.3")
	router := newTestRouter()
	router.GET("/system/info", h.GetSystemInfo)

	w := performRequest(router, http.MethodGet, "/system/info", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "backoffice", resp.Data.Name)
	assert.Equal(t, "1.2.3", resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
}

func TestSystemHandler_Health(t *testing.T) {
	decode := func(t *testing.T, w *httptest.ResponseRecorder) HealthResponse {
		t.Helper()
		var resp struct {
			Data HealthResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Data
	}

	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("backoffice", "dev")
		h.AddCheck("database", func(context.Context) error { return nil })
		router := newTestRouter()
		router.GET("/health", h.Health)

		w := performRequest(router, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		health := decode(t, w)
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, "ok", health.Checks["database"])
	})

	t.Run("a failing check degrades", func(t *testing.T) {
		h := NewSystemHandler("backoffice", "dev")
		h.AddCheck("database", func(context.Context) error { return nil })
		h.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })
		router := newTestRouter()
		router.GET("/health", h.Health)

		w := performRequest(router, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		health := decode(t, w)
		assert.Equal(t, "degraded", health.Status)
		assert.Equal(t, "connection refused", health.Checks["redis"])
		assert.Equal(t, "ok", health.Checks["database"])
	})
}
