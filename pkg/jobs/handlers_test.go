package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bibliothek/bibliothek/internal/testgen"
	"github.com/bibliothek/bibliothek/pkg/binder"
	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobsTestContext(t *testing.T, payload string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()
	h := &handler{config: config.NewForTest(), jobService: NewService(testgen.NewDB(t))}

	c, rr := newJobsTestContext(t, `{"type":"scan","data":{"path":"/books","force":true}}`)
	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusCreated, rr.Code)

	body := struct {
		ID     int         `json:"id"`
		Status string      `json:"status"`
		Data   JobScanData `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotZero(t, body.ID)
	assert.Equal(t, JobStatusPending, body.Status)
	assert.Equal(t, JobScanData{Path: "/books", Force: true}, body.Data)

	c, _ = newJobsTestContext(t, `{"type":"scan","data":{"path":"/other"}}`)
	err := h.create(c)
	assert.True(t, errcodes.HasCode(err, errcodes.CodeConflict))

	c, rr = newJobsTestContext(t, `{"type":"cleanup"}`)
	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusCreated, rr.Code)

	total, err := h.jobService.db.NewSelect().Model((*Job)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestHandlerCreate_ScanNeedsPath(t *testing.T) {
	t.Parallel()
	h := &handler{config: config.NewForTest(), jobService: NewService(testgen.NewDB(t))}

	c, _ := newJobsTestContext(t, `{"type":"scan"}`)
	err := h.create(c)
	assert.True(t, errcodes.HasCode(err, "validation_error"))
}

func TestHandlerCreate_UnknownType(t *testing.T) {
	t.Parallel()
	h := &handler{config: config.NewForTest(), jobService: NewService(testgen.NewDB(t))}

	c, _ := newJobsTestContext(t, `{"type":"export"}`)
	err := h.create(c)
	assert.True(t, errcodes.HasCode(err, "validation_error"))
}
