package controllers

import (
	"net/http"

	"github.com/adforge/adforge/app/services"
	"github.com/adforge/adforge/pkg/auth"
	"github.com/adforge/adforge/pkg/bind"
	"github.com/adforge/adforge/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := c.service.Register(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, result)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := c.service.Login(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, result)
}

// Profile returns the authenticated user's own record.
func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := c.service.Profile(r.Context(), auth.UIDFromCtx(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, user)
}
