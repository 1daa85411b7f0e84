package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adforge/adforge/app/models"
	"github.com/adforge/adforge/pkg/cache"
	"github.com/adforge/adforge/pkg/metrics"
	"github.com/adforge/adforge/pkg/realtime"
)

const listCacheTTL = 30 * time.Second

// Lifecycle owns the product status state machine and the event contract:
// every committed mutation publishes exactly one event to the owner's room,
// after the commit, best-effort.
type Lifecycle struct {
	products   ProductStore
	businesses BusinessStore
	blobs      BlobStore
	pub        realtime.Publisher
	cache      *cache.Cache
	audit      *AuditTrail
	log        *slog.Logger
	now        func() time.Time
}

// NewLifecycle wires the lifecycle service. cache and audit may be nil.
func NewLifecycle(products ProductStore, businesses BusinessStore, blobs BlobStore,
	pub realtime.Publisher, c *cache.Cache, audit *AuditTrail, log *slog.Logger) *Lifecycle {
	return &Lifecycle{
		products:   products,
		businesses: businesses,
		blobs:      blobs,
		pub:        pub,
		cache:      c,
		audit:      audit,
		log:        log,
		now:        time.Now,
	}
}

// CreateProductInput are the caller-settable fields at creation. Status is
// deliberately absent: every new product starts at pending, no override.
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
	AdText      string  `json:"adText"`
	ImagePrompt string  `json:"imagePrompt"`
}

// CreateProduct creates a product under the caller's business with
// status=pending and server-assigned timestamps, then publishes created.
func (s *Lifecycle) CreateProduct(ctx context.Context, uid, businessID string, in CreateProductInput) (*models.Product, error) {
	if _, err := s.businesses.Find(ctx, uid, businessID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Product{
		ID:          uuid.NewString(),
		BusinessID:  businessID,
		UID:         uid,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		AdText:      in.AdText,
		ImagePrompt: in.ImagePrompt,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateList(ctx, uid, businessID)
	s.pub.Publish(realtime.UserRoom(uid), realtime.Event{Type: realtime.ProductCreated, Data: p})
	return p, nil
}

// ImportProducts batch-creates products, all pending, one created event each.
func (s *Lifecycle) ImportProducts(ctx context.Context, uid, businessID string, ins []CreateProductInput) ([]*models.Product, error) {
	if _, err := s.businesses.Find(ctx, uid, businessID); err != nil {
		return nil, err
	}
	if len(ins) == 0 {
		return nil, &ValidationError{Reason: "import requires at least one product"}
	}

	now := s.now().UTC()
	ps := make([]*models.Product, len(ins))
	for i, in := range ins {
		ps[i] = &models.Product{
			ID:          uuid.NewString(),
			BusinessID:  businessID,
			UID:         uid,
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			ImageURL:    in.ImageURL,
			AdText:      in.AdText,
			ImagePrompt: in.ImagePrompt,
			Status:      models.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	if err := s.products.CreateMany(ctx, ps); err != nil {
		return nil, err
	}

	s.invalidateList(ctx, uid, businessID)
	for _, p := range ps {
		s.pub.Publish(realtime.UserRoom(uid), realtime.Event{Type: realtime.ProductCreated, Data: p})
	}
	return ps, nil
}

// GetProduct returns one scoped product.
func (s *Lifecycle) GetProduct(ctx context.Context, uid, businessID, id string) (*models.Product, error) {
	return s.products.Find(ctx, uid, businessID, id)
}

// ListProducts returns the business's products, served from cache when warm.
func (s *Lifecycle) ListProducts(ctx context.Context, uid, businessID string) ([]models.Product, error) {
	key := listCacheKey(uid, businessID)

	var cached []models.Product
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	out, err := s.products.List(ctx, uid, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, out, listCacheTTL); err != nil {
		s.log.Warn("lifecycle: cache set failed", "key", key, "error", err)
	}
	return out, nil
}

// UpdateProduct merges a partial patch into the product. Non-status fields
// merge permissively; a status change must be a legal edge from the CURRENT
// stored status or the whole patch is rejected with ErrInvalidTransition.
// updatedAt is always refreshed. Absent product: ErrNotFound, no event.
func (s *Lifecycle) UpdateProduct(ctx context.Context, uid, businessID, id string, patch models.ProductPatch) (*models.Product, error) {
	if patch.Empty() {
		return nil, &ValidationError{Reason: "update requires at least one field"}
	}

	current, err := s.products.Find(ctx, uid, businessID, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	fields := map[string]interface{}{"updatedAt": now}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.ImageURL != nil {
		fields["imageUrl"] = *patch.ImageURL
	}
	if patch.AdText != nil {
		fields["adText"] = *patch.AdText
	}
	if patch.ImagePrompt != nil {
		fields["imagePrompt"] = *patch.ImagePrompt
	}
	if patch.Status != nil {
		next := *patch.Status
		if !next.Valid() {
			return nil, &ValidationError{Reason: "unknown status " + string(next)}
		}
		if !current.Status.CanTransition(next) {
			return nil, ErrInvalidTransition
		}
		fields["status"] = next
		if next == models.StatusPosted {
			fields["postedAt"] = now
		}
		s.recordTransition(ctx, current, next)
	}

	// The read-validate-write above is not transactional: a concurrent
	// mutation can land between Find and Merge and the later write wins.
	updated, err := s.products.Merge(ctx, uid, businessID, id, fields)
	if err != nil {
		return nil, err
	}

	s.invalidateList(ctx, uid, businessID)
	s.pub.Publish(realtime.UserRoom(uid), realtime.Event{Type: realtime.ProductUpdated, Data: updated})
	return updated, nil
}

// DeleteProduct removes the document, then cleans the product's blob folder
// best-effort: a blob-store failure is logged, never blocks the deletion.
func (s *Lifecycle) DeleteProduct(ctx context.Context, uid, businessID, id string) error {
	p, err := s.products.Find(ctx, uid, businessID, id)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, uid, businessID, id); err != nil {
		return err
	}

	if err := s.blobs.DeletePrefix(ctx, p.StoragePrefix()); err != nil {
		s.log.Warn("lifecycle: blob cleanup failed", "prefix", p.StoragePrefix(), "error", err)
	}

	s.invalidateList(ctx, uid, businessID)
	s.pub.Publish(realtime.UserRoom(uid), realtime.Event{
		Type: realtime.ProductDeleted,
		Data: realtime.DeletedKeys{ID: id, BusinessID: businessID},
	})
	return nil
}

// AttachSourceImage merges a freshly uploaded image URL into the product.
func (s *Lifecycle) AttachSourceImage(ctx context.Context, uid, businessID, id, url string) (*models.Product, error) {
	return s.UpdateProduct(ctx, uid, businessID, id, models.ProductPatch{ImageURL: &url})
}

// BeginGeneration validates the generation preconditions and moves the
// product into processing. ErrMissingAssets is raised before any state
// change or external call. The caller enqueues the generation job after
// this commits.
func (s *Lifecycle) BeginGeneration(ctx context.Context, uid, businessID, id string) (*models.Product, error) {
	p, err := s.products.Find(ctx, uid, businessID, id)
	if err != nil {
		return nil, err
	}
	if p.ImageURL == "" || p.ImagePrompt == "" {
		return nil, ErrMissingAssets
	}
	if !p.Status.CanTransition(models.StatusProcessing) {
		return nil, ErrInvalidTransition
	}

	now := s.now().UTC()
	updated, err := s.products.Merge(ctx, uid, businessID, id, map[string]interface{}{
		"status":    models.StatusProcessing,
		"updatedAt": now,
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(ctx, p, models.StatusProcessing)

	s.invalidateList(ctx, uid, businessID)
	s.pub.Publish(realtime.UserRoom(uid), realtime.Event{Type: realtime.ProductUpdated, Data: updated})
	return updated, nil
}

// CompleteGeneration records a successful generation: the generated image
// URL is stored and status is forced to enriched.
func (s *Lifecycle) CompleteGeneration(ctx context.Context, uid, businessID, id, generatedURL string) (*models.Product, error) {
	current, err := s.products.Find(ctx, uid, businessID, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updated, err := s.products.Merge(ctx, uid, businessID, id, map[string]interface{}{
		"status":            models.StatusEnriched,
		"generatedImageUrl": generatedURL,
		"errorMessage":      "",
		"updatedAt":         now,
	})
	if err != nil {
		return nil, err
	}
	s.recordTransition(ctx, current, models.StatusEnriched)
	metrics.GenerationJobs.WithLabelValues("enriched").Inc()

	s.invalidateList(ctx, uid, businessID)
	s.pub.Publish(realtime.UserRoom(uid), realtime.Event{Type: realtime.ProductUpdated, Data: updated})
	return updated, nil
}

// FailGeneration records a failed generation: status is forced to failed
// with the error message and failedAt. The product's own fields are left
// untouched. If even this commit fails it is logged at ERROR — the failure
// must never vanish silently.
func (s *Lifecycle) FailGeneration(ctx context.Context, uid, businessID, id, errorMessage string) {
	current, findErr := s.products.Find(ctx, uid, businessID, id)

	now := s.now().UTC()
	updated, err := s.products.Merge(ctx, uid, businessID, id, map[string]interface{}{
		"status":       models.StatusFailed,
		"errorMessage": errorMessage,
		"failedAt":     now,
		"updatedAt":    now,
	})
	if err != nil {
		s.log.Error("lifecycle: could not record generation failure",
			"product_id", id, "cause", errorMessage, "error", err)
		return
	}
	if findErr == nil {
		s.recordTransition(ctx, current, models.StatusFailed)
	}
	metrics.GenerationJobs.WithLabelValues("failed").Inc()

	s.invalidateList(ctx, uid, businessID)
	s.pub.Publish(realtime.UserRoom(uid), realtime.Event{Type: realtime.ProductUpdated, Data: updated})
}

// ─── Businesses ───────────────────────────────────────────────────────────────

// CreateBusinessInput are the caller-settable business fields.
type CreateBusinessInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Address     string `json:"address"`
	Instagram   string `json:"instagram"`
	Website     string `json:"website" validate:"omitempty,url"`
	ToneOfVoice string `json:"toneOfVoice"`
}

// CreateBusiness creates a business for the caller and publishes created.
func (s *Lifecycle) CreateBusiness(ctx context.Context, uid string, in CreateBusinessInput) (*models.Business, error) {
	now := s.now().UTC()
	b := &models.Business{
		ID:          uuid.NewString(),
		UID:         uid,
		Name:        in.Name,
		Address:     in.Address,
		Instagram:   in.Instagram,
		Website:     in.Website,
		ToneOfVoice: in.ToneOfVoice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.businesses.Create(ctx, b); err != nil {
		return nil, err
	}
	s.pub.Publish(realtime.UserRoom(uid), realtime.Event{Type: realtime.BusinessCreated, Data: b})
	return b, nil
}

// GetBusiness returns one scoped business.
func (s *Lifecycle) GetBusiness(ctx context.Context, uid, id string) (*models.Business, error) {
	return s.businesses.Find(ctx, uid, id)
}

// ListBusinesses returns the caller's businesses.
func (s *Lifecycle) ListBusinesses(ctx context.Context, uid string) ([]models.Business, error) {
	return s.businesses.List(ctx, uid)
}

// UpdateBusiness merges a partial patch and publishes updated.
func (s *Lifecycle) UpdateBusiness(ctx context.Context, uid, id string, patch models.BusinessPatch) (*models.Business, error) {
	if patch.Empty() {
		return nil, &ValidationError{Reason: "update requires at least one field"}
	}

	fields := map[string]interface{}{"updatedAt": s.now().UTC()}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Address != nil {
		fields["address"] = *patch.Address
	}
	if patch.Instagram != nil {
		fields["instagram"] = *patch.Instagram
	}
	if patch.Website != nil {
		fields["website"] = *patch.Website
	}
	if patch.ToneOfVoice != nil {
		fields["toneOfVoice"] = *patch.ToneOfVoice
	}

	updated, err := s.businesses.Merge(ctx, uid, id, fields)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(realtime.UserRoom(uid), realtime.Event{Type: realtime.BusinessUpdated, Data: updated})
	return updated, nil
}

// DeleteBusiness cascades: child products are deleted first, their blob
// folders cleaned best-effort, then the business itself goes. One deleted
// event per product plus one for the business.
func (s *Lifecycle) DeleteBusiness(ctx context.Context, uid, id string) error {
	if _, err := s.businesses.Find(ctx, uid, id); err != nil {
		return err
	}

	products, err := s.products.List(ctx, uid, id)
	if err != nil {
		return err
	}

	if _, err := s.products.DeleteByBusiness(ctx, uid, id); err != nil {
		return err
	}
	for _, p := range products {
		if err := s.blobs.DeletePrefix(ctx, p.StoragePrefix()); err != nil {
			s.log.Warn("lifecycle: blob cleanup failed", "prefix", p.StoragePrefix(), "error", err)
		}
		s.pub.Publish(realtime.UserRoom(uid), realtime.Event{
			Type: realtime.ProductDeleted,
			Data: realtime.DeletedKeys{ID: p.ID, BusinessID: id},
		})
	}

	if err := s.businesses.Delete(ctx, uid, id); err != nil {
		return err
	}

	s.invalidateList(ctx, uid, id)
	s.pub.Publish(realtime.UserRoom(uid), realtime.Event{
		Type: realtime.BusinessDeleted,
		Data: realtime.DeletedKeys{ID: id},
	})
	return nil
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func (s *Lifecycle) recordTransition(ctx context.Context, p *models.Product, to models.Status) {
	metrics.Transitions.WithLabelValues(string(p.Status), string(to)).Inc()
	s.audit.Record(ctx, p, to)
}

func (s *Lifecycle) invalidateList(ctx context.Context, uid, businessID string) {
	if err := s.cache.Forget(ctx, listCacheKey(uid, businessID)); err != nil {
		s.log.Warn("lifecycle: cache invalidation failed", "error", err)
	}
}

func listCacheKey(uid, businessID string) string {
	return "products:" + uid + ":" + businessID
}
