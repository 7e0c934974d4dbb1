package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "triage/internal/shared/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorResponseWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"not found", apperrors.NewNotFoundError("no wait-time aggregate for unit", "UPA9"), http.StatusNotFound, "not_found"},
		{"bad request", apperrors.NewBadRequestError("bad tipo"), http.StatusBadRequest, "bad_request"},
		{"plain error hides details", errors.New("dial tcp: refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponseWithError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus, StatusOf(tt.err))
			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantType, resp.Error.Type)
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestRawJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RawJSONResponse(c, http.StatusOK, []byte(`{"unidadeAtendimento":"UPA1"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"unidadeAtendimento":"UPA1"}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}
