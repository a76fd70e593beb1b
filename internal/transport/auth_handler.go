package transport

import (
	"net/http"

	"catalog-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IdentityResponse carries the identity read from a verified token
type IdentityResponse struct {
	UserID string `json:"userId"`
}

// AuthHandler exposes the caller identity established by the authentication service
type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// RegisterRoutes registers the identity routes behind authMiddleware
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.With(authMiddleware).Get("/me", h.Me)
	})
}

// Me returns the authenticated identity
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Error("Identity missing from authenticated context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ResultResponse{
		Message: "success",
		Result:  IdentityResponse{UserID: userID},
	})
}
