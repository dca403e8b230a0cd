package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roadsafety/backend/libs/auth"
	"github.com/stretchr/testify/assert"
)

// mockAuthenticator maps tokens to principals
type mockAuthenticator struct {
	principals map[string]auth.Principal
}

func (m *mockAuthenticator) Authenticate(token string) (auth.Principal, error) {
	if p, ok := m.principals[token]; ok {
		return p, nil
	}
	return auth.Principal{}, errors.New("invalid token")
}

func newMockAuthenticator() *mockAuthenticator {
	return &mockAuthenticator{principals: map[string]auth.Principal{
		"user-token":  {UserID: 10, Role: auth.RoleUser},
		"admin-token": {UserID: 1, Role: auth.RoleAdmin},
	}}
}

func TestRoleMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		requiredRole   auth.Role
		setupRequest   func(r *http.Request)
		expectedStatus int
		expectedUserID int
	}{
		{
			name:           "no token",
			requiredRole:   auth.RoleUser,
			setupRequest:   func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:         "invalid token",
			requiredRole: auth.RoleUser,
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer nope")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:         "bearer header",
			requiredRole: auth.RoleUser,
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "bearer user-token")
			},
			expectedStatus: http.StatusOK,
			expectedUserID: 10,
		},
		{
			name:         "cookie",
			requiredRole: auth.RoleUser,
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: "user-token"})
			},
			expectedStatus: http.StatusOK,
			expectedUserID: 10,
		},
		{
			name:         "query token only on websocket upgrade",
			requiredRole: auth.RoleUser,
			setupRequest: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("token", "user-token")
				r.URL.RawQuery = q.Encode()
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:         "websocket query token",
			requiredRole: auth.RoleUser,
			setupRequest: func(r *http.Request) {
				r.Header.Set("Upgrade", "websocket")
				q := r.URL.Query()
				q.Set("token", "user-token")
				r.URL.RawQuery = q.Encode()
			},
			expectedStatus: http.StatusOK,
			expectedUserID: 10,
		},
		{
			name:         "user on admin route",
			requiredRole: auth.RoleAdmin,
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer user-token")
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:         "admin on admin route",
			requiredRole: auth.RoleAdmin,
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer admin-token")
			},
			expectedStatus: http.StatusOK,
			expectedUserID: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID int
			handler := RoleMiddleware(newMockAuthenticator(), tt.requiredRole)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setupRequest(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedUserID, gotUserID)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		header        string
		expectedFound bool
	}{
		{name: "anonymous", header: ""},
		{name: "invalid token ignored", header: "Bearer nope"},
		{name: "valid token", header: "Bearer admin-token", expectedFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found bool
			handler := OptionalAuthMiddleware(newMockAuthenticator())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, found = GetPrincipal(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expectedFound, found)
		})
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		configured     string
		provided       string
		expectedStatus int
	}{
		{name: "matching key", configured: "k1", provided: "k1", expectedStatus: http.StatusOK},
		{name: "wrong key", configured: "k1", provided: "k2", expectedStatus: http.StatusUnauthorized},
		{name: "missing key", configured: "k1", provided: "", expectedStatus: http.StatusUnauthorized},
		{name: "unconfigured rejects all", configured: "", provided: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := APIKeyMiddleware(tt.configured)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.provided != "" {
				req.Header.Set("X-API-Key", tt.provided)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
