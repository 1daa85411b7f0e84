package models

import "time"

// Status is the lifecycle state of a Product's advertisement generation.
type Status string

const (
	StatusPending    Status = "pending"    // created, nothing generated yet
	StatusProcessing Status = "processing" // a generation job is enqueued or running
	StatusEnriched   Status = "enriched"   // generation succeeded, ad assets present
	StatusPosted     Status = "posted"     // ad published by the owner
	StatusFailed     Status = "failed"     // generation failed, see ErrorMessage
)

// transitions is the closed set of legal status edges. Anything not listed
// here is rejected by the lifecycle service, including no-op self edges.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusEnriched, StatusFailed},
	StatusEnriched:   {StatusPosted},
	StatusFailed:     {StatusPending}, // retry
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusEnriched, StatusPosted, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Product is one merchandise item awaiting or carrying generated ad assets.
// Ownership is strict: a product belongs to exactly one business, which
// belongs to exactly one user. Every query is scoped by UID and BusinessID
// taken from the verified identity, never from the client.
type Product struct {
	ID                string     `bson:"_id" json:"id"`
	BusinessID        string     `bson:"businessId" json:"businessId"`
	UID               string     `bson:"uid" json:"uid"`
	Name              string     `bson:"name,omitempty" json:"name,omitempty"`
	Description       string     `bson:"description,omitempty" json:"description,omitempty"`
	Price             float64    `bson:"price,omitempty" json:"price,omitempty"`
	ImageURL          string     `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	AdText            string     `bson:"adText,omitempty" json:"adText,omitempty"`
	ImagePrompt       string     `bson:"imagePrompt,omitempty" json:"imagePrompt,omitempty"`
	GeneratedImageURL string     `bson:"generatedImageUrl,omitempty" json:"generatedImageUrl,omitempty"`
	Status            Status     `bson:"status" json:"status"`
	ErrorMessage      string     `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt" json:"updatedAt"`
	PostedAt          *time.Time `bson:"postedAt,omitempty" json:"postedAt,omitempty"`
	FailedAt          *time.Time `bson:"failedAt,omitempty" json:"failedAt,omitempty"`
}

// StoragePrefix is the blob-store folder that holds every image uploaded or
// generated for this product. Deleting the product deletes this prefix.
func (p Product) StoragePrefix() string {
	return "users/" + p.UID + "/" + p.BusinessID + "/" + p.ID + "/"
}

// ProductPatch is a partial update. Nil fields are left untouched; the
// repository merges only the fields that are set.
type ProductPatch struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url"`
	AdText      *string  `json:"adText"`
	ImagePrompt *string  `json:"imagePrompt"`
	Status      *Status  `json:"status"`
}

// Empty reports whether the patch carries no fields at all.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.ImageURL == nil && p.AdText == nil && p.ImagePrompt == nil && p.Status == nil
}
