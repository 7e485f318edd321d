// models/asset.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AssetTypeReturnable    = "Returnable"
	AssetTypeNonReturnable = "Non-returnable"
)

// Asset is a tenant-scoped stock record, unique per tenant on the
// case-folded name.
type Asset struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`

	// NameLower is the case-insensitive lookup key; always derived
	// from Name, never set by callers.
	NameLower string `bson:"nameLower" json:"-"`

	Type     string `bson:"type" json:"type"`
	Quantity int64  `bson:"quantity" json:"quantity"`

	// HREmail is the owning tenant.
	HREmail   string    `bson:"hrEmail" json:"hrEmail"`
	AddedDate time.Time `bson:"addedDate" json:"addedDate"`
}

func FoldAssetName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
