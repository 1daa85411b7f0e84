package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adforge/adforge/pkg/imagegen"
)

// ImageGenerator is the opaque external generation API.
type ImageGenerator interface {
	Generate(ctx context.Context, req imagegen.Request) (img []byte, contentType string, err error)
}

// ImageStore is the blob-store subset the generation pipeline writes to.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Generation runs the asynchronous half of the generation pipeline: called
// from the queue worker after BeginGeneration has already moved the product
// into processing.
type Generation struct {
	lifecycle *Lifecycle
	generator ImageGenerator
	images    ImageStore
	log       *slog.Logger
}

func NewGeneration(lifecycle *Lifecycle, generator ImageGenerator, images ImageStore, log *slog.Logger) *Generation {
	return &Generation{lifecycle: lifecycle, generator: generator, images: images, log: log}
}

// Run generates the ad image for one product. Every failure path (upstream
// error, timeout, blob-store error) lands in FailGeneration so the outcome
// is always visible in the document and on the owner's channel. Run never
// returns an error for generation failures: the failed status IS the result.
func (g *Generation) Run(ctx context.Context, uid, businessID, productID string) {
	p, err := g.lifecycle.GetProduct(ctx, uid, businessID, productID)
	if err != nil {
		g.log.Error("generation: product vanished before generation", "product_id", productID, "error", err)
		return
	}

	// Branding tone is opaque pass-through context from the owning business.
	tone := ""
	if b, err := g.lifecycle.GetBusiness(ctx, uid, businessID); err == nil {
		tone = b.ToneOfVoice
	}

	img, contentType, err := g.generator.Generate(ctx, imagegen.Request{
		ImageURL: p.ImageURL,
		Prompt:   p.ImagePrompt,
		Tone:     tone,
	})
	if err != nil {
		g.lifecycle.FailGeneration(ctx, uid, businessID, productID, err.Error())
		return
	}

	key := p.StoragePrefix() + "generated-" + uuid.NewString() + extension(contentType)
	url, err := g.images.Put(ctx, key, contentType, bytes.NewReader(img))
	if err != nil {
		g.lifecycle.FailGeneration(ctx, uid, businessID, productID, "store generated image: "+err.Error())
		return
	}

	if _, err := g.lifecycle.CompleteGeneration(ctx, uid, businessID, productID, url); err != nil {
		g.log.Error("generation: could not commit enriched status", "product_id", productID, "error", err)
	}
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
