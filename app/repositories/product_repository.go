package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adforge/adforge/app/models"
)

// ProductRepository handles the products collection. Every operation is
// scoped by the verified owner's uid and the business leaf.
//
// Updates are per-document atomic $set merges; nothing here wraps a
// read-validate-write sequence in a transaction, so two concurrent mutations
// of the same product interleave with last-write-wins. Accepted for this
// domain: a single human owner triggers the mutations.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(productsCollection)}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("products: insert: %w", err)
	}
	return nil
}

// CreateMany inserts a batch of imported products in one call.
func (r *ProductRepository) CreateMany(ctx context.Context, ps []*models.Product) error {
	if len(ps) == 0 {
		return nil
	}
	docs := make([]interface{}, len(ps))
	for i, p := range ps {
		docs[i] = p
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("products: insert many: %w", err)
	}
	return nil
}

func (r *ProductRepository) Find(ctx context.Context, uid, businessID, id string) (*models.Product, error) {
	var p models.Product
	err := r.col.FindOne(ctx, r.scope(uid, businessID, id)).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("products: find: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context, uid, businessID string) ([]models.Product, error) {
	cursor, err := r.col.Find(ctx, bson.M{"uid": uid, "businessId": businessID})
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	var out []models.Product
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("products: decode list: %w", err)
	}
	return out, nil
}

// Merge applies a partial $set update and returns the post-merge document.
// An absent document yields ErrNotFound — never an upsert.
func (r *ProductRepository) Merge(ctx context.Context, uid, businessID, id string, fields map[string]interface{}) (*models.Product, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err := r.col.FindOneAndUpdate(ctx, r.scope(uid, businessID, id), bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("products: merge: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, uid, businessID, id string) error {
	res, err := r.col.DeleteOne(ctx, r.scope(uid, businessID, id))
	if err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByBusiness removes every product of a business. Used by the cascade
// when the business itself is deleted.
func (r *ProductRepository) DeleteByBusiness(ctx context.Context, uid, businessID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"uid": uid, "businessId": businessID})
	if err != nil {
		return 0, fmt.Errorf("products: delete by business: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ProductRepository) scope(uid, businessID, id string) bson.M {
	return bson.M{"_id": id, "uid": uid, "businessId": businessID}
}
