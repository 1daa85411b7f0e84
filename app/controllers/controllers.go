// Package controllers holds the HTTP handlers. Controllers stay thin: bind,
// call the service, map the error class onto a status code.
package controllers

import (
	"errors"
	"net/http"

	"github.com/adforge/adforge/app/repositories"
	"github.com/adforge/adforge/app/services"
	"github.com/adforge/adforge/pkg/logger"
	"github.com/adforge/adforge/pkg/response"
)

// respondError maps service/repository error classes onto the response
// taxonomy: 401 auth, 404 not-found, 409 illegal transition, 422 validation,
// 500 for anything upstream.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *services.ValidationError

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "")
	case errors.Is(err, services.ErrBadCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, "Illegal status transition")
	case errors.Is(err, services.ErrMissingAssets):
		response.ValidationError(w, map[string]string{
			"product": "A source image and an image prompt are required before generation.",
		})
	case errors.As(err, &vErr):
		response.ValidationError(w, map[string]string{"request": vErr.Reason})
	case errors.Is(err, repositories.ErrEmailTaken):
		response.ValidationError(w, map[string]string{"email": "This email is already registered."})
	default:
		logger.WithCtx(r.Context()).Error("request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
