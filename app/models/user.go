package models

import "time"

// User is the identity anchor. It holds profile display fields only and is
// never touched by the product lifecycle.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"` // bcrypt, never serialised
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
