// store/store.go
//
// Storage-access interfaces consumed by the engine packages. Two
// implementations exist: mongostore (production) and memstore (tests).
// Conditional mutations (quantity compare-and-set, status transitions)
// report "no match" instead of guessing a cause; the services decide
// between NotFound, InsufficientStock and InvalidTransition by
// re-reading.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/models"
)

// AssetFilter narrows an asset listing. Tenant is mandatory; the rest
// are optional. Search is a case-insensitive substring match on name.
type AssetFilter struct {
	Tenant      string
	Search      string
	Type        string
	StockStatus string // "", StockAvailable or StockOut
}

const (
	StockAvailable = "available"
	StockOut       = "out"
)

// AssetSort orders an asset listing. Field is one of "name",
// "quantity" or "addedDate"; empty means newest first.
type AssetSort struct {
	Field      string
	Descending bool
}

// RequestFilter narrows a request listing. Exactly one of Tenant or
// RequesterEmail is set by the engine.
type RequestFilter struct {
	Tenant         string
	RequesterEmail string
	Status         string
	AssetType      string
	Search         string // substring match on asset name or requester
}

type RequestCount struct {
	Name  string `bson:"_id" json:"name"`
	Count int64  `bson:"count" json:"count"`
}

type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Returned int64 `json:"returned"`
}

type UserStore interface {
	// FindByEmail returns (nil, nil) when no user has that email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error)

	// ListUnassigned returns employees with no tenant (hrEmail null).
	ListUnassigned(ctx context.Context) ([]models.User, error)
	ListMembers(ctx context.Context, tenant string) ([]models.User, error)

	// SetTenant overwrites the user's tenant fields; a nil hrEmail
	// clears them. Upsert semantics on the fields, not the document.
	SetTenant(ctx context.Context, id primitive.ObjectID, hrEmail *string, company, logo string) error

	UpdateName(ctx context.Context, email, name string) error

	// AdjustEmployeeCount adds delta to employeeCount but only when
	// the result stays non-negative; returns (false, nil) when the
	// guard fails.
	AdjustEmployeeCount(ctx context.Context, email string, delta int64) (bool, error)
}

type AssetStore interface {
	// FindByID and FindByName return (nil, nil) when absent.
	// FindByName matches case-insensitively within the tenant.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Asset, error)
	FindByName(ctx context.Context, tenant, name string) (*models.Asset, error)

	List(ctx context.Context, f AssetFilter, s AssetSort) ([]models.Asset, error)
	LowStock(ctx context.Context, tenant string, threshold, limit int64) ([]models.Asset, error)

	Insert(ctx context.Context, a *models.Asset) (primitive.ObjectID, error)

	// AddQuantity increments quantity and refreshes type/addedDate on
	// an existing asset (the stock-in path).
	AddQuantity(ctx context.Context, id primitive.ObjectID, delta int64, assetType string, addedDate time.Time) error

	// DecrementQuantity is a compare-and-set: it subtracts qty only if
	// the stored quantity is at least qty, reporting whether the
	// conditional update matched.
	DecrementQuantity(ctx context.Context, id primitive.ObjectID, qty int64) (bool, error)
	IncrementQuantity(ctx context.Context, id primitive.ObjectID, qty int64) error

	Update(ctx context.Context, id primitive.ObjectID, tenant string, name, assetType string, quantity int64) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID, tenant string) (bool, error)
}

type RequestStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	Insert(ctx context.Context, r *models.Request) (primitive.ObjectID, error)
	List(ctx context.Context, f RequestFilter) ([]models.Request, error)

	// Transition flips status from -> to only when the stored status
	// still equals from, stamping the given date field name with at.
	// Reports whether the conditional update matched.
	Transition(ctx context.Context, id primitive.ObjectID, from, to, dateField string, at time.Time) (bool, error)

	// CountOpenByAsset counts pending/approved requests referencing
	// the asset, used to guard asset deletion.
	CountOpenByAsset(ctx context.Context, tenant string, assetID primitive.ObjectID) (int64, error)

	TopRequested(ctx context.Context, tenant string, limit int64) ([]RequestCount, error)
	StatusCounts(ctx context.Context, tenant string) (StatusCounts, error)
}
