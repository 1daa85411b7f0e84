package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/app/models"
	"github.com/adforge/adforge/pkg/imagegen"
)

type fakeGenerator struct {
	gotReq      imagegen.Request
	img         []byte
	contentType string
	err         error
}

func (f *fakeGenerator) Generate(_ context.Context, req imagegen.Request) ([]byte, string, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, "", f.err
	}
	return f.img, f.contentType, nil
}

type fakeImageStore struct {
	keys []string
	err  error
}

func (f *fakeImageStore) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, r)
	f.keys = append(f.keys, key)
	return "http://cdn/" + key, nil
}

func newGenerationFixture(t *testing.T) (*Generation, *fakeGenerator, *fakeImageStore, *fixture) {
	t.Helper()
	f := newFixture(t)
	gen := &fakeGenerator{img: []byte("png-bytes"), contentType: "image/png"}
	images := &fakeImageStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGeneration(f.svc, gen, images, log), gen, images, f
}

func seedProcessing(f *fixture) {
	f.businesses.businesses["b1"] = &models.Business{ID: "b1", UID: "u1", ToneOfVoice: "playful"}
	f.seedProduct(models.Product{
		ID: "p1", BusinessID: "b1", UID: "u1", Name: "Lamp",
		Status:      models.StatusProcessing,
		ImageURL:    "https://cdn/source.jpg",
		ImagePrompt: "lamp on a desk",
	})
}

func TestGenerationRunEnriches(t *testing.T) {
	g, gen, images, f := newGenerationFixture(t)
	seedProcessing(f)

	g.Run(ctx, "u1", "b1", "p1")

	assert.Equal(t, "https://cdn/source.jpg", gen.gotReq.ImageURL)
	assert.Equal(t, "lamp on a desk", gen.gotReq.Prompt)
	assert.Equal(t, "playful", gen.gotReq.Tone)

	require.Len(t, images.keys, 1)
	assert.True(t, strings.HasPrefix(images.keys[0], "users/u1/b1/p1/generated-"))
	assert.True(t, strings.HasSuffix(images.keys[0], ".png"))

	p, err := f.products.Find(ctx, "u1", "b1", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnriched, p.Status)
	assert.Equal(t, "http://cdn/"+images.keys[0], p.GeneratedImageURL)
}

func TestGenerationRunFailsOnGeneratorError(t *testing.T) {
	g, gen, _, f := newGenerationFixture(t)
	seedProcessing(f)
	gen.err = errors.New("upstream status 502")

	g.Run(ctx, "u1", "b1", "p1")

	p, err := f.products.Find(ctx, "u1", "b1", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, p.Status)
	assert.Equal(t, "upstream status 502", p.ErrorMessage)
	assert.NotNil(t, p.FailedAt)
}

func TestGenerationRunFailsOnStoreError(t *testing.T) {
	g, _, images, f := newGenerationFixture(t)
	seedProcessing(f)
	images.err = errors.New("bucket unreachable")

	g.Run(ctx, "u1", "b1", "p1")

	p, err := f.products.Find(ctx, "u1", "b1", "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, p.Status)
	assert.Contains(t, p.ErrorMessage, "bucket unreachable")
}

func TestGenerationRunMissingProduct(t *testing.T) {
	g, gen, _, _ := newGenerationFixture(t)

	g.Run(ctx, "u1", "b1", "vanished")
	assert.Empty(t, gen.gotReq.Prompt, "generator must not be called")
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".jpg", extension("image/jpeg"))
	assert.Equal(t, ".webp", extension("image/webp"))
	assert.Equal(t, ".png", extension("image/png"))
	assert.Equal(t, ".png", extension(""))
}
