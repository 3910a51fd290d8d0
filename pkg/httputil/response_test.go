package httputil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthrec/record-api/pkg/errors"
)

func performError(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithError(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", errors.Validation("bad input", nil), http.StatusBadRequest},
		{"unauthorized", errors.Unauthorized(stderrors.New("bad token")), http.StatusUnauthorized},
		{"permission denied", errors.PermissionDenied(stderrors.New("not assigned")), http.StatusForbidden},
		{"not found", errors.NotFound("health record", nil), http.StatusNotFound},
		{"conflict", errors.Conflict("email already registered", nil), http.StatusConflict},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := performError(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.status, body.Error.Code)
		})
	}
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	_, body := performError(t, stderrors.New("pq: connection refused"))
	assert.Equal(t, "internal server error", body.Error.Message)
	assert.NotContains(t, body.Error.Message, "pq:")
}

func TestPermissionDeniedNeverLeaksCause(t *testing.T) {
	_, body := performError(t, errors.PermissionDenied(stderrors.New("doctor not assigned to patient")))
	assert.Equal(t, "permission denied", body.Error.Message)
}

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithSuccess(c, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
}
