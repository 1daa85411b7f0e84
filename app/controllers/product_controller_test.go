package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/app/models"
	"github.com/adforge/adforge/app/repositories"
	"github.com/adforge/adforge/app/services"
	"github.com/adforge/adforge/pkg/auth"
	"github.com/adforge/adforge/pkg/middleware"
	"github.com/adforge/adforge/pkg/realtime"
)

// Minimal in-memory stores, enough to drive the HTTP layer.

type memProducts struct{ byID map[string]*models.Product }

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memProducts) CreateMany(ctx context.Context, ps []*models.Product) error {
	for _, p := range ps {
		if err := m.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (m *memProducts) Find(_ context.Context, uid, businessID, id string) (*models.Product, error) {
	p, ok := m.byID[id]
	if !ok || p.UID != uid || p.BusinessID != businessID {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) List(_ context.Context, uid, businessID string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.byID {
		if p.UID == uid && p.BusinessID == businessID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProducts) Merge(_ context.Context, uid, businessID, id string, fields map[string]interface{}) (*models.Product, error) {
	p, ok := m.byID[id]
	if !ok || p.UID != uid || p.BusinessID != businessID {
		return nil, repositories.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "price":
			p.Price = v.(float64)
		case "status":
			p.Status = v.(models.Status)
		case "updatedAt":
			p.UpdatedAt = v.(time.Time)
		case "postedAt":
			t := v.(time.Time)
			p.PostedAt = &t
		}
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) Delete(_ context.Context, uid, businessID, id string) error {
	if _, err := m.Find(context.Background(), uid, businessID, id); err != nil {
		return err
	}
	delete(m.byID, id)
	return nil
}

func (m *memProducts) DeleteByBusiness(_ context.Context, uid, businessID string) (int64, error) {
	var n int64
	for id, p := range m.byID {
		if p.UID == uid && p.BusinessID == businessID {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

type memBusinesses struct{ byID map[string]*models.Business }

func (m *memBusinesses) Create(_ context.Context, b *models.Business) error {
	cp := *b
	m.byID[b.ID] = &cp
	return nil
}

func (m *memBusinesses) Find(_ context.Context, uid, id string) (*models.Business, error) {
	b, ok := m.byID[id]
	if !ok || b.UID != uid {
		return nil, repositories.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBusinesses) List(_ context.Context, uid string) ([]models.Business, error) {
	var out []models.Business
	for _, b := range m.byID {
		if b.UID == uid {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBusinesses) Merge(_ context.Context, uid, id string, fields map[string]interface{}) (*models.Business, error) {
	b, err := m.Find(context.Background(), uid, id)
	if err != nil {
		return nil, err
	}
	if v, ok := fields["name"]; ok {
		b.Name = v.(string)
	}
	m.byID[id] = b
	cp := *b
	return &cp, nil
}

func (m *memBusinesses) Delete(_ context.Context, uid, id string) error {
	if _, err := m.Find(context.Background(), uid, id); err != nil {
		return err
	}
	delete(m.byID, id)
	return nil
}

type nopBlobs struct{}

func (nopBlobs) DeletePrefix(context.Context, string) error { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(string, realtime.Event) {}

type apiFixture struct {
	router     chi.Router
	tokens     *auth.Tokens
	products   *memProducts
	businesses *memBusinesses
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	products := &memProducts{byID: map[string]*models.Product{}}
	businesses := &memBusinesses{byID: map[string]*models.Business{}}
	lifecycle := services.NewLifecycle(products, businesses, nopBlobs{}, nopPublisher{}, nil, nil, log)
	tokens := auth.NewTokens("test-secret", time.Hour)

	pc := NewProductController(lifecycle)
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Auth(tokens))
		pr.Post("/api/products/{businessId}", pc.Create)
		pr.Get("/api/products/{businessId}", pc.List)
		pr.Get("/api/products/{businessId}/{productId}", pc.Get)
		pr.Patch("/api/products/update/{businessId}/{productId}", pc.Update)
		pr.Delete("/api/products/{businessId}/{productId}", pc.Delete)
	})

	return &apiFixture{router: r, tokens: tokens, products: products, businesses: businesses}
}

func (f *apiFixture) do(t *testing.T, uid, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if uid != "" {
		token, err := f.tokens.Generate(uid)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestProductRoutesRequireAuth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "", http.MethodGet, "/api/products/b1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProductEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.businesses.byID["b1"] = &models.Business{ID: "b1", UID: "u1"}

	rec := f.do(t, "u1", http.MethodPost, "/api/products/b1", `{"name":"Lamp","price":49.9}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Lamp", data["name"])
	assert.Equal(t, "pending", data["status"])
}

func TestCreateProductValidation(t *testing.T) {
	f := newAPIFixture(t)
	f.businesses.byID["b1"] = &models.Business{ID: "b1", UID: "u1"}

	// Missing required name.
	rec := f.do(t, "u1", http.MethodPost, "/api/products/b1", `{"price":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Malformed JSON.
	rec = f.do(t, "u1", http.MethodPost, "/api/products/b1", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProductNotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "u1", http.MethodGet, "/api/products/b1/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProductIllegalTransitionConflicts(t *testing.T) {
	f := newAPIFixture(t)
	f.products.byID["p1"] = &models.Product{ID: "p1", BusinessID: "b1", UID: "u1", Status: models.StatusPending}

	rec := f.do(t, "u1", http.MethodPatch, "/api/products/update/b1/p1", `{"status":"posted"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateProductEmptyPatchRejected(t *testing.T) {
	f := newAPIFixture(t)
	f.products.byID["p1"] = &models.Product{ID: "p1", BusinessID: "b1", UID: "u1", Status: models.StatusPending}

	rec := f.do(t, "u1", http.MethodPatch, "/api/products/update/b1/p1", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCrossUserProductIsNotFound(t *testing.T) {
	f := newAPIFixture(t)
	f.products.byID["p1"] = &models.Product{ID: "p1", BusinessID: "b1", UID: "u1", Status: models.StatusPending}

	rec := f.do(t, "u2", http.MethodGet, "/api/products/b1/p1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, "u2", http.MethodDelete, "/api/products/b1/p1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProductEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.products.byID["p1"] = &models.Product{ID: "p1", BusinessID: "b1", UID: "u1", Status: models.StatusPending}

	rec := f.do(t, "u1", http.MethodDelete, "/api/products/b1/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, "u1", http.MethodGet, "/api/products/b1/p1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
