// models/request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request states. The only legal moves are pending -> approved,
// pending -> rejected and approved -> returned; rejected and returned
// are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusReturned = "returned"
)

// Request is one employee's claim on units of an asset. Asset name and
// type are snapshotted at creation so the record stays readable if the
// asset is later renamed.
type Request struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetID        primitive.ObjectID `bson:"assetId" json:"assetId"`
	AssetName      string             `bson:"assetName" json:"assetName"`
	AssetType      string             `bson:"assetType" json:"assetType"`
	RequesterEmail string             `bson:"requesterEmail" json:"requesterEmail"`
	RequesterName  string             `bson:"requesterName,omitempty" json:"requesterName,omitempty"`

	// HREmail is the owning tenant; always equal to the asset's tenant
	// at creation time.
	HREmail string `bson:"hrEmail" json:"hrEmail"`

	Quantity int64  `bson:"quantity" json:"quantity"`
	Note     string `bson:"note,omitempty" json:"note,omitempty"`
	Status   string `bson:"status" json:"status"`

	RequestDate  time.Time  `bson:"requestDate" json:"requestDate"`
	ApprovalDate *time.Time `bson:"approvalDate,omitempty" json:"approvalDate,omitempty"`
	RejectedDate *time.Time `bson:"rejectedDate,omitempty" json:"rejectedDate,omitempty"`
	ReturnedDate *time.Time `bson:"returnedDate,omitempty" json:"returnedDate,omitempty"`
}

// CanTransition reports whether a move from -> to is on the allowed
// state graph.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusReturned
	}
	return false
}
