package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adforge/adforge/app/services"
	"github.com/adforge/adforge/pkg/auth"
	"github.com/adforge/adforge/pkg/response"
	"github.com/adforge/adforge/pkg/storage"
)

const maxUploadBytes = 10 << 20 // 10 MB per image

type UploadController struct {
	lifecycle *services.Lifecycle
	store     storage.Store
}

func NewUploadController(lifecycle *services.Lifecycle, store storage.Store) *UploadController {
	return &UploadController{lifecycle: lifecycle, store: store}
}

// Upload stores a multipart product image in the blob store under the
// product's folder and merges the resulting URL into the product document.
func (c *UploadController) Upload(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromCtx(r.Context())
	businessID := chi.URLParam(r, "businessId")
	productID := chi.URLParam(r, "productId")

	// Ownership check first: 404 before reading the body.
	p, err := c.lifecycle.GetProduct(r.Context(), uid, businessID, productID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.ValidationError(w, map[string]string{"image": "The file must be an image."})
		return
	}

	key := p.StoragePrefix() + "source-" + uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	url, err := c.store.Put(r.Context(), key, contentType, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := c.lifecycle.AttachSourceImage(r.Context(), uid, businessID, productID, url)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, updated)
}
