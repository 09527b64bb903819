package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatusAndEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "invalid parameter",
			err:        apperror.New(apperror.KindInvalidParameter, "unknown period keyword: fortnight"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_parameter",
			wantError:  "unknown period keyword: fortnight",
		},
		{
			name:       "invalid state transition",
			err:        apperror.New(apperror.KindInvalidStateTransition, "cannot pay a pending settlement"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_state_transition",
			wantError:  "cannot pay a pending settlement",
		},
		{
			name:       "unauthorized",
			err:        apperror.New(apperror.KindUnauthorized, "invalid email or password"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
			wantError:  "invalid email or password",
		},
		{
			name:       "forbidden",
			err:        apperror.New(apperror.KindForbidden, "insufficient role"),
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
			wantError:  "insufficient role",
		},
		{
			name:       "not found",
			err:        apperror.New(apperror.KindNotFound, "settlement not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
			wantError:  "settlement not found",
		},
		{
			name:       "timeout",
			err:        apperror.New(apperror.KindTimeout, "report query timed out"),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "timeout",
			wantError:  "report query timed out",
		},
		{
			name:       "data unavailable maps to 500",
			err:        apperror.New(apperror.KindDataUnavailable, "ledger query failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "data_unavailable",
			wantError:  "ledger query failed",
		},
		{
			name:       "unknown error never leaks internals",
			err:        errors.New("pq: connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Nil(t, body.Data)
		})
	}
}

func TestRespondErrorWrappedCauseStaysOutOfBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	cause := errors.New("dial tcp 10.0.0.5:5432: i/o timeout")
	respondError(c, apperror.Wrap(apperror.KindDataUnavailable, "reconciliation data unavailable", cause))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), "reconciliation data unavailable")
}
