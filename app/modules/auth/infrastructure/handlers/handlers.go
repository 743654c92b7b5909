// Package authhandlers exposes the auth module's HTTP surface.
package authhandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	authservice "github.com/Podium-Debate/podium-engine/app/modules/auth/application"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// AuthHandlers implements the HTTP handlers for session introspection.
type AuthHandlers struct {
	service authservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(service authservice.Service, logger *slog.Logger, tracer trace.Tracer) *AuthHandlers {
	return &AuthHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// HandleHTTPSession verifies the bearer token and returns the session.
func (h *AuthHandlers) HandleHTTPSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.service.VerifySession(ctx, bearerToken(r))
	if err != nil {
		h.logger.WarnContext(ctx, "Session introspection rejected", attr.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	resp := map[string]any{
		"user_id":    string(session.UserID),
		"role":       session.Role.String(),
		"expires_at": session.ExpiresAt,
	}
	if session.TournamentID != nil {
		resp["tournament_id"] = session.TournamentID.String()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHTTPAuthorizeBallot is a preflight check for ballot entry
// forms: it verifies the caller may submit a ballot for the posted
// judge panel before the form is rendered.
func (h *AuthHandlers) HandleHTTPAuthorizeBallot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Judges []types.UserID `json:"judges"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.service.AuthorizeBallotSubmission(ctx, bearerToken(r), req.Judges); err != nil {
		h.logger.WarnContext(ctx, "Ballot authorization rejected", attr.Error(err))
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
