package config

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerRetrieve(t *testing.T) {
	t.Parallel()

	cfg := NewForTest()
	cfg.LibraryPath = "/books"
	cfg.VolumeCatalogAPIKey = "secret"

	e := echo.New()
	RegisterRoutesWithGroup(e.Group("/config"), cfg)

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret")

	body := PublicConfig{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, cfg.Public(), body)
	assert.Equal(t, "/books", body.LibraryPath)
}
