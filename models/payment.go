// models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records a completed package purchase by an HRManager.
// Recording a payment does not touch inventory or seat counts; the
// seat adjustment is a separate explicit call.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HREmail       string             `bson:"hrEmail" json:"hrEmail"`
	PackageName   string             `bson:"packageName" json:"packageName"`
	Seats         int64              `bson:"seats" json:"seats"`
	AmountCents   int64              `bson:"amountCents" json:"amountCents"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	PaidAt        time.Time          `bson:"paidAt" json:"paidAt"`
}
