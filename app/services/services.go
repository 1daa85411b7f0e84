// Package services holds the application's domain logic. The lifecycle
// service owns every Product and Business mutation path; persistence,
// blob storage and event publishing are injected behind small interfaces so
// tests run against fakes.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/adforge/adforge/app/models"
)

var (
	// ErrInvalidTransition rejects a status edge outside the transition table.
	ErrInvalidTransition = errors.New("services: illegal status transition")

	// ErrMissingAssets rejects generation on a product that lacks a source
	// image or a prompt. Raised before any external call or state change.
	ErrMissingAssets = errors.New("services: product needs a source image and a prompt before generation")
)

// ValidationError carries a human-readable reason for a 422 response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("services: validation: %s", e.Reason)
}

// ProductStore is the document-store contract for products.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	CreateMany(ctx context.Context, ps []*models.Product) error
	Find(ctx context.Context, uid, businessID, id string) (*models.Product, error)
	List(ctx context.Context, uid, businessID string) ([]models.Product, error)
	Merge(ctx context.Context, uid, businessID, id string, fields map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, uid, businessID, id string) error
	DeleteByBusiness(ctx context.Context, uid, businessID string) (int64, error)
}

// BusinessStore is the document-store contract for businesses.
type BusinessStore interface {
	Create(ctx context.Context, b *models.Business) error
	Find(ctx context.Context, uid, id string) (*models.Business, error)
	List(ctx context.Context, uid string) ([]models.Business, error)
	Merge(ctx context.Context, uid, id string, fields map[string]interface{}) (*models.Business, error)
	Delete(ctx context.Context, uid, id string) error
}

// UserStore is the document-store contract for users.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// BlobStore is the subset of the blob store the services use.
type BlobStore interface {
	DeletePrefix(ctx context.Context, prefix string) error
}
