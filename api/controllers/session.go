package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/ecofinds-backend/api/middleware"
	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/api/validators"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// IdentityNotifier receives signed-in identity changes for a session.
type IdentityNotifier interface {
	IdentityChanged(ctx context.Context, sessionID, userID string) error
}

type identityRequest struct {
	UserID string `json:"user_id" validate:"max=128"`
}

// SessionIdentity records that the session's user changed. The cart is not merged or reset.
func SessionIdentity(notifier IdentityNotifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if notifier == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable"))
			return
		}
		var payload identityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sessionID := middleware.SessionIDFromContext(r.Context())
		userID := validators.SanitizeString(payload.UserID, 128)
		if err := notifier.IdentityChanged(r.Context(), sessionID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"session_id": sessionID, "user_id": userID})
	}
}
