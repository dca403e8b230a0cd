package handlers

import (
	"net/http"

	"github.com/roadsafety/backend/libs/apperrors"
	"github.com/roadsafety/backend/libs/auth"
	"github.com/roadsafety/backend/libs/auth/middleware"
	"github.com/roadsafety/backend/libs/handlers"
)

// requirePrincipal returns the caller stored by the auth middleware, answering 401 when it is missing
func requirePrincipal(h *handlers.BaseHandler, w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.Logger.Error("principal not found in context")
		h.RespondAppError(w, r, apperrors.Unauthenticated("authentication required"))
		return auth.Principal{}, false
	}
	return principal, true
}
