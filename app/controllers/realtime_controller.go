package controllers

import (
	"net/http"
	"strings"

	"github.com/adforge/adforge/pkg/auth"
	"github.com/adforge/adforge/pkg/logger"
	"github.com/adforge/adforge/pkg/realtime"
	"github.com/adforge/adforge/pkg/response"
)

type RealtimeController struct {
	tokens *auth.Tokens
	hub    *realtime.Hub
}

func NewRealtimeController(tokens *auth.Tokens, hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{tokens: tokens, hub: hub}
}

// Connect verifies the caller's identity and joins them to their own room.
// Verification happens BEFORE the upgrade: an unverifiable connection is
// rejected without ever touching the hub.
func (c *RealtimeController) Connect(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		raw = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if raw == "" {
		response.Unauthorized(w)
		return
	}

	claims, err := c.tokens.Validate(raw)
	if err != nil {
		response.Error(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	if err := realtime.Join(w, r, c.hub, realtime.UserRoom(claims.UID)); err != nil {
		logger.WithCtx(r.Context()).Error("realtime: upgrade failed", "error", err)
	}
}
