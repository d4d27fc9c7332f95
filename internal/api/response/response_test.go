package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/inboxpilot/inboxpilot-backend/internal/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSuccess(t *testing.T) {
	c, rec := newTestContext()

	err := Success(c, map[string]string{"key": "value"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestPaginated(t *testing.T) {
	c, rec := newTestContext()

	err := Paginated(c, []string{"a", "b"}, 50, 20, 0)
	require.NoError(t, err)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(50), resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
	assert.True(t, resp.Meta.HasMore)
}

func TestPaginated_LastPage(t *testing.T) {
	c, rec := newTestContext()

	err := Paginated(c, []string{"a"}, 21, 20, 20)
	require.NoError(t, err)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Meta.HasMore)
}

func TestError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, apperrors.CodeNotFound},
		{"duplicate", apperrors.ErrDuplicateEntry, http.StatusConflict, apperrors.CodeDuplicateEntry},
		{"invalid input", apperrors.ErrInvalidInput, http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"unauthenticated", apperrors.ErrUnauthenticated, http.StatusUnauthorized, apperrors.CodeUnauthenticated},
		{"upstream", apperrors.Upstream("gmail down", errors.New("boom")), http.StatusBadGateway, apperrors.CodeUpstreamError},
		{"storage", apperrors.Storage("db down", errors.New("boom")), http.StatusInternalServerError, apperrors.CodeStorageError},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError, apperrors.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext()

			require.NoError(t, Error(c, tt.err))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestUnauthenticated(t *testing.T) {
	c, rec := newTestContext()

	require.NoError(t, Unauthenticated(c, "missing user identity"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeUnauthenticated, resp.Code)
	assert.Equal(t, "missing user identity", resp.Error)
}

func TestBadRequest(t *testing.T) {
	c, rec := newTestContext()

	require.NoError(t, BadRequest(c, "bad payload"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoContent(t *testing.T) {
	c, rec := newTestContext()

	require.NoError(t, NoContent(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
