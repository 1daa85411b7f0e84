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

// BusinessRepository handles the businesses collection. Every operation is
// scoped by the verified owner's uid.
type BusinessRepository struct {
	col *mongo.Collection
}

func NewBusinessRepository(db *mongo.Database) *BusinessRepository {
	return &BusinessRepository{col: db.Collection(businessesCollection)}
}

func (r *BusinessRepository) Create(ctx context.Context, b *models.Business) error {
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("businesses: insert: %w", err)
	}
	return nil
}

func (r *BusinessRepository) Find(ctx context.Context, uid, id string) (*models.Business, error) {
	var b models.Business
	err := r.col.FindOne(ctx, bson.M{"_id": id, "uid": uid}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("businesses: find: %w", err)
	}
	return &b, nil
}

func (r *BusinessRepository) List(ctx context.Context, uid string) ([]models.Business, error) {
	cursor, err := r.col.Find(ctx, bson.M{"uid": uid})
	if err != nil {
		return nil, fmt.Errorf("businesses: list: %w", err)
	}
	var out []models.Business
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("businesses: decode list: %w", err)
	}
	return out, nil
}

// Merge applies a partial $set update and returns the post-merge document.
// An absent document yields ErrNotFound — never an upsert.
func (r *BusinessRepository) Merge(ctx context.Context, uid, id string, fields map[string]interface{}) (*models.Business, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b models.Business
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "uid": uid}, bson.M{"$set": set}, opts).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("businesses: merge: %w", err)
	}
	return &b, nil
}

func (r *BusinessRepository) Delete(ctx context.Context, uid, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "uid": uid})
	if err != nil {
		return fmt.Errorf("businesses: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
