package models

import "time"

// ReferenceKind enumerates the lookup entities a game links to.
type ReferenceKind string

const (
	ReferenceCategory  ReferenceKind = "category"
	ReferenceDeveloper ReferenceKind = "developer"
	ReferencePlatform  ReferenceKind = "platform"
	ReferencePublisher ReferenceKind = "publisher"
)

// ReferenceKinds lists every kind in reconciliation order.
var ReferenceKinds = []ReferenceKind{
	ReferenceCategory,
	ReferenceDeveloper,
	ReferencePlatform,
	ReferencePublisher,
}

// Reference is a category, developer, platform or publisher row.
// Name is unique within its kind.
type Reference struct {
	ID        int           `db:"id" json:"id"`
	Kind      ReferenceKind `db:"-" json:"kind"`
	Name      string        `db:"name" json:"name"`
	Slug      string        `db:"slug" json:"slug"`
	CreatedAt time.Time     `db:"created_at" json:"-"`
}
