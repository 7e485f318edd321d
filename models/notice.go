// models/notice.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notice is a tenant announcement. Pure pass-through persistence, no
// lifecycle logic.
type Notice struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	HREmail     string             `bson:"hrEmail" json:"hrEmail"`
	PostedAt    time.Time          `bson:"postedAt" json:"postedAt"`
}
