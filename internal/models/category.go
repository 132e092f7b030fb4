package models

import "time"

// Category is a static taxonomy node. The hierarchy is flat: Children exists
// for forward compatibility but is always empty in practice.
type Category struct {
	ID          string    `bson:"_id,omitempty" json:"id,omitempty"`
	Slug        string    `bson:"slug" json:"slug"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Icon        string    `bson:"icon" json:"icon"`
	Color       string    `bson:"color" json:"color"`
	SortOrder   int       `bson:"sort_order" json:"sortOrder"`
	Children    []string  `bson:"children" json:"children"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
