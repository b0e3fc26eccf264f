package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/storefront-gate/internal/audit"
	"github.com/serroba/storefront-gate/internal/auth"
	"github.com/serroba/storefront-gate/internal/messaging"
	"go.uber.org/zap"
)

// AuthHandler handles password submission, auth status and logout.
type AuthHandler struct {
	gate           *auth.Gate
	publishAttempt messaging.Publish[audit.AuthAttemptEvent]
	logger         *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	gate *auth.Gate,
	publishAttempt messaging.Publish[audit.AuthAttemptEvent],
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		gate:           gate,
		publishAttempt: publishAttempt,
		logger:         logger,
	}
}

// SubmitPassword verifies the submitted password and issues the session
// cookie on success.
func (h *AuthHandler) SubmitPassword(ctx context.Context, req *SubmitPasswordRequest) (*SubmitPasswordResponse, error) {
	resp := &SubmitPasswordResponse{}

	if !h.gate.RequiresPassword() {
		resp.Body.Success = true

		return resp, nil
	}

	if h.gate.Misconfigured() {
		// The specifics stay in the logs; the client gets a generic error.
		h.logger.Error("shop password is set but no session secret is configured")
		h.recordAttempt(ctx, audit.OutcomeMisconfigured)

		return nil, huma.Error500InternalServerError("internal server error")
	}

	var body struct {
		Password string `json:"password"`
	}

	if err := json.Unmarshal(req.RawBody, &body); err != nil || body.Password == "" {
		return nil, huma.Error400BadRequest("invalid request")
	}

	if !h.gate.VerifyPassword(body.Password) {
		h.recordAttempt(ctx, audit.OutcomeInvalidPassword)

		return nil, huma.Error401Unauthorized("invalid password")
	}

	h.recordAttempt(ctx, audit.OutcomeSuccess)

	resp.SetCookie = []http.Cookie{h.gate.IssueCookie()}
	resp.Body.Success = true

	return resp, nil
}

// AuthStatus reports whether the caller's session cookie grants access.
func (h *AuthHandler) AuthStatus(_ context.Context, req *AuthStatusRequest) (*AuthStatusResponse, error) {
	resp := &AuthStatusResponse{}
	resp.Body.IsAuthenticated = h.gate.Authenticated(req.Session)
	resp.Body.RequiresPassword = h.gate.RequiresPassword()

	return resp, nil
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(_ context.Context, _ *struct{}) (*LogoutResponse, error) {
	resp := &LogoutResponse{}
	resp.SetCookie = []http.Cookie{h.gate.ClearCookie()}
	resp.Body.Success = true

	return resp, nil
}

func (h *AuthHandler) recordAttempt(ctx context.Context, outcome string) {
	meta := RequestMetaFromContext(ctx)
	event := &audit.AuthAttemptEvent{
		Outcome:    outcome,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		RequestID:  meta.RequestID,
		OccurredAt: time.Now(),
	}

	if err := h.publishAttempt(event); err != nil {
		h.logger.Error("failed to publish auth attempt event",
			zap.String("outcome", outcome),
			zap.Error(err),
		)
	}
}
