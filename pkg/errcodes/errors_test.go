package errcodes

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNotFound_MatchesWrapped(t *testing.T) {
	t.Parallel()

	err := errors.WithStack(NotFound("Book"))
	assert.True(t, errors.Is(err, NotFound("Book")))
	assert.False(t, errors.Is(err, NotFound("Work")))
	assert.True(t, HasCode(err, CodeNotFound))
}

func TestHasCode(t *testing.T) {
	t.Parallel()

	assert.True(t, HasCode(errors.Wrap(IntegrityViolation("books.path"), "save"), CodeIntegrityViolation))
	assert.False(t, HasCode(errors.New("boom"), CodeIntegrityViolation))
}

func TestGeneratePayload(t *testing.T) {
	t.Parallel()

	h := NewHandler()

	code, payload := h.generatePayload(FileMissing("/lib/a.epub"))
	assert.Equal(t, http.StatusGone, code)
	assert.Equal(t, CodeFileMissing, payload["error"].(map[string]interface{})["code"])

	code, payload = h.generatePayload(echo.NewHTTPError(http.StatusBadRequest, "Bad Thing"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "bad_thing", payload["error"].(map[string]interface{})["code"])

	code, payload = h.generatePayload(errors.New("kaboom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal_server_error", payload["error"].(map[string]interface{})["code"])
}
