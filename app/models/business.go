package models

import "time"

// Business is a named grouping of products owned by one user. The branding
// fields (tone of voice, handles) are opaque pass-through context for the
// image-generation prompt; nothing here interprets them.
type Business struct {
	ID          string    `bson:"_id" json:"id"`
	UID         string    `bson:"uid" json:"uid"`
	Name        string    `bson:"name" json:"name"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Instagram   string    `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Website     string    `bson:"website,omitempty" json:"website,omitempty"`
	ToneOfVoice string    `bson:"toneOfVoice,omitempty" json:"toneOfVoice,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// BusinessPatch is a partial update for a business document.
type BusinessPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Address     *string `json:"address"`
	Instagram   *string `json:"instagram"`
	Website     *string `json:"website" validate:"omitempty,url"`
	ToneOfVoice *string `json:"toneOfVoice"`
}

// Empty reports whether the patch carries no fields at all.
func (p BusinessPatch) Empty() bool {
	return p.Name == nil && p.Address == nil && p.Instagram == nil &&
		p.Website == nil && p.ToneOfVoice == nil
}
