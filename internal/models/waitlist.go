package models

import "time"

// WaitlistEntry records interest in the platform. Email is unique at the
// store level; repeat signups update the existing entry.
type WaitlistEntry struct {
	ID        string    `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string    `bson:"email" json:"email"`
	Tools     string    `bson:"tools,omitempty" json:"tools,omitempty"`
	Consent   bool      `bson:"consent" json:"consent"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
