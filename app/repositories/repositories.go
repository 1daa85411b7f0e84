// Package repositories implements the document store over MongoDB.
//
// Ownership is enforced structurally: every filter includes the verified
// owner's uid (and businessId for products), so a query can never reach
// another user's subtree regardless of what IDs the client supplied.
package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when the scoped document does not exist.
	ErrNotFound = errors.New("repositories: document not found")

	// ErrEmailTaken is returned when registering a duplicate email.
	ErrEmailTaken = errors.New("repositories: email already registered")
)

const (
	usersCollection      = "users"
	businessesCollection = "businesses"
	productsCollection   = "products"
)

// EnsureIndexes creates the indexes the queries rely on. Run once at boot.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(businessesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "uid", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(productsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "uid", Value: 1}, {Key: "businessId", Value: 1}},
	})
	return err
}
