package controllers

import (
	"net/http"

	"github.com/adforge/adforge/app/jobs"
	"github.com/adforge/adforge/app/services"
	"github.com/adforge/adforge/pkg/auth"
	"github.com/adforge/adforge/pkg/bind"
	"github.com/adforge/adforge/pkg/queue"
	"github.com/adforge/adforge/pkg/response"
)

type AIController struct {
	lifecycle *services.Lifecycle
	queue     *queue.Manager
}

func NewAIController(lifecycle *services.Lifecycle, q *queue.Manager) *AIController {
	return &AIController{lifecycle: lifecycle, queue: q}
}

// GenerateAdImage validates the generation preconditions, moves the product
// into processing, and enqueues the generation job. The outcome arrives
// asynchronously as an enriched or failed status on the owner's channel.
func (c *AIController) GenerateAdImage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BusinessID string `json:"businessId" validate:"required"`
		ProductID  string `json:"productId" validate:"required"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	uid := auth.UIDFromCtx(r.Context())
	p, err := c.lifecycle.BeginGeneration(r.Context(), uid, body.BusinessID, body.ProductID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	err = c.queue.Dispatch(&jobs.GenerateAdJob{
		UID:        uid,
		BusinessID: body.BusinessID,
		ProductID:  body.ProductID,
	})
	if err != nil {
		// The product is already in processing; surface the stall as a
		// generation failure so it never looks stuck.
		c.lifecycle.FailGeneration(r.Context(), uid, body.BusinessID, body.ProductID, "enqueue generation job: "+err.Error())
		respondError(w, r, err)
		return
	}

	response.Success(w, p)
}
