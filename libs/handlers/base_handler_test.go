package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBaseHandler_RespondAppError(t *testing.T) {
	h := &BaseHandler{Logger: zap.NewNop()}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "not found",
			err:            apperrors.NotFound("course not found"),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"course not found","code":"not_found"}`,
		},
		{
			name:           "conflict",
			err:            apperrors.Conflict("already enrolled in course"),
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"already enrolled in course","code":"conflict"}`,
		},
		{
			name:           "forbidden",
			err:            apperrors.Forbidden("admin access required"),
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"error":"admin access required","code":"forbidden"}`,
		},
		{
			name:           "unauthenticated",
			err:            apperrors.Unauthenticated("authentication required"),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"authentication required","code":"unauthenticated"}`,
		},
		{
			name:           "validation",
			err:            apperrors.Validation("answer index out of range"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"answer index out of range","code":"validation"}`,
		},
		{
			name:           "raw error hides details",
			err:            errors.New("Error 1146: Table 'x' doesn't exist"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error","code":"internal"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			h.RespondAppError(rec, req, tt.err)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}

func TestBaseHandler_DecodeJSON(t *testing.T) {
	h := &BaseHandler{Logger: zap.NewNop()}

	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name          string
		body          string
		expectedError bool
		errorContains string
	}{
		{name: "valid", body: `{"name":"x"}`},
		{name: "empty body", body: ``, expectedError: true, errorContains: "request body is required"},
		{name: "unknown field ignored", body: `{"name":"x","is_correct":true}`},
		{name: "malformed", body: `{"name":`, expectedError: true, errorContains: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := h.DecodeJSON(req, &dst)

			if tt.expectedError {
				require.Error(t, err)
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "x", dst.Name)
		})
	}
}

func TestBaseHandler_IntParam(t *testing.T) {
	h := &BaseHandler{Logger: zap.NewNop()}

	tests := []struct {
		name          string
		value         string
		expected      int
		expectedError bool
	}{
		{name: "valid", value: "5", expected: 5},
		{name: "zero", value: "0", expectedError: true},
		{name: "negative", value: "-2", expectedError: true},
		{name: "not a number", value: "abc", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.value)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			id, err := h.IntParam(req, "id")
			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestBaseHandler_IntQuery(t *testing.T) {
	h := &BaseHandler{Logger: zap.NewNop()}

	req := httptest.NewRequest(http.MethodGet, "/?days=7&bad=x", nil)

	days, err := h.IntQuery(req, "days", 30)
	assert.NoError(t, err)
	assert.Equal(t, 7, days)

	missing, err := h.IntQuery(req, "limit", 100)
	assert.NoError(t, err)
	assert.Equal(t, 100, missing)

	_, err = h.IntQuery(req, "bad", 1)
	assert.Error(t, err)
}
