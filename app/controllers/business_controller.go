package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adforge/adforge/app/models"
	"github.com/adforge/adforge/app/services"
	"github.com/adforge/adforge/pkg/auth"
	"github.com/adforge/adforge/pkg/bind"
	"github.com/adforge/adforge/pkg/response"
)

type BusinessController struct {
	lifecycle *services.Lifecycle
}

func NewBusinessController(lifecycle *services.Lifecycle) *BusinessController {
	return &BusinessController{lifecycle: lifecycle}
}

func (c *BusinessController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateBusinessInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := c.lifecycle.CreateBusiness(r.Context(), auth.UIDFromCtx(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, b)
}

func (c *BusinessController) List(w http.ResponseWriter, r *http.Request) {
	bs, err := c.lifecycle.ListBusinesses(r.Context(), auth.UIDFromCtx(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, bs)
}

func (c *BusinessController) Get(w http.ResponseWriter, r *http.Request) {
	b, err := c.lifecycle.GetBusiness(r.Context(), auth.UIDFromCtx(r.Context()), chi.URLParam(r, "businessId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, b)
}

func (c *BusinessController) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.BusinessPatch
	if errs, err := bind.JSON(r, &patch); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := c.lifecycle.UpdateBusiness(r.Context(), auth.UIDFromCtx(r.Context()), chi.URLParam(r, "businessId"), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, b)
}

func (c *BusinessController) Delete(w http.ResponseWriter, r *http.Request) {
	err := c.lifecycle.DeleteBusiness(r.Context(), auth.UIDFromCtx(r.Context()), chi.URLParam(r, "businessId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"deleted": chi.URLParam(r, "businessId")})
}
