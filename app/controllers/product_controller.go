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

type ProductController struct {
	lifecycle *services.Lifecycle
}

func NewProductController(lifecycle *services.Lifecycle) *ProductController {
	return &ProductController{lifecycle: lifecycle}
}

func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := c.lifecycle.CreateProduct(r.Context(), auth.UIDFromCtx(r.Context()), chi.URLParam(r, "businessId"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, p)
}

// Import batch-creates products from a JSON array.
func (c *ProductController) Import(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Products []services.CreateProductInput `json:"products" validate:"required,min=1,dive"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ps, err := c.lifecycle.ImportProducts(r.Context(), auth.UIDFromCtx(r.Context()), chi.URLParam(r, "businessId"), body.Products)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Created(w, ps)
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	ps, err := c.lifecycle.ListProducts(r.Context(), auth.UIDFromCtx(r.Context()), chi.URLParam(r, "businessId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, ps)
}

func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	p, err := c.lifecycle.GetProduct(r.Context(), auth.UIDFromCtx(r.Context()),
		chi.URLParam(r, "businessId"), chi.URLParam(r, "productId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, p)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.ProductPatch
	if errs, err := bind.JSON(r, &patch); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := c.lifecycle.UpdateProduct(r.Context(), auth.UIDFromCtx(r.Context()),
		chi.URLParam(r, "businessId"), chi.URLParam(r, "productId"), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, p)
}

func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	err := c.lifecycle.DeleteProduct(r.Context(), auth.UIDFromCtx(r.Context()),
		chi.URLParam(r, "businessId"), chi.URLParam(r, "productId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"deleted": chi.URLParam(r, "productId")})
}
