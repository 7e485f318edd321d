// inventory/inventory.go
//
// Asset Inventory: owns per-tenant stock records and the quantity
// invariant. Every decrement is a compare-and-set against the stored
// quantity, so concurrent stock-outs can never drive it negative.
package inventory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/apperr"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/policy"
	"github.com/sabbirsolid/asset-management-system-server/store"
)

const (
	DefaultLowStockThreshold = 10
	DefaultLowStockLimit     = 10
)

type Service struct {
	assets   store.AssetStore
	requests store.RequestStore
	now      func() time.Time
}

func New(assets store.AssetStore, requests store.RequestStore) *Service {
	return &Service{assets: assets, requests: requests, now: time.Now}
}

// List returns the caller's tenant assets. The tenant is always taken
// from the resolved identity, never from client input.
func (s *Service) List(ctx context.Context, caller policy.Caller, f store.AssetFilter, sort store.AssetSort) ([]models.Asset, error) {
	tenant := caller.Tenant
	if err := policy.Authorize(caller, policy.ActionListAssets, tenant); err != nil {
		return nil, err
	}
	f.Tenant = tenant

	assets, err := s.assets.List(ctx, f, sort)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "asset listing failed", err)
	}
	return assets, nil
}

// StockIn is the case-insensitive upsert keyed on (name, tenant): an
// existing asset gains quantity and has its type and addedDate
// refreshed, otherwise a new record is created.
func (s *Service) StockIn(ctx context.Context, caller policy.Caller, name, assetType string, quantity int64) (*models.Asset, error) {
	if err := policy.Authorize(caller, policy.ActionStockIn, caller.Email); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperr.New(apperr.KindNotFound, "asset name is required")
	}
	if quantity < 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "quantity must be a non-negative integer")
	}
	if assetType != models.AssetTypeReturnable && assetType != models.AssetTypeNonReturnable {
		return nil, apperr.Newf(apperr.KindConflict, "unknown asset type %q", assetType)
	}

	existing, err := s.assets.FindByName(ctx, caller.Email, name)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "asset lookup failed", err)
	}

	if existing == nil {
		asset := &models.Asset{
			Name:      name,
			Type:      assetType,
			Quantity:  quantity,
			HREmail:   caller.Email,
			AddedDate: s.now(),
		}
		if _, err := s.assets.Insert(ctx, asset); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "asset insert failed", err)
		}
		return asset, nil
	}

	if err := s.assets.AddQuantity(ctx, existing.ID, quantity, assetType, s.now()); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "stock-in failed", err)
	}
	return s.findByID(ctx, existing.ID)
}

// StockOut consumes quantity from an asset. The decrement only happens
// when enough stock is stored, checked and applied in one conditional
// update.
func (s *Service) StockOut(ctx context.Context, caller policy.Caller, assetID primitive.ObjectID, quantity int64) (*models.Asset, error) {
	if err := policy.Authorize(caller, policy.ActionStockOut, caller.Email); err != nil {
		return nil, err
	}

	asset, err := s.ownedAsset(ctx, caller.Email, assetID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "quantity must be a positive integer")
	}

	ok, err := s.assets.DecrementQuantity(ctx, asset.ID, quantity)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "stock-out failed", err)
	}
	if !ok {
		return nil, apperr.Newf(apperr.KindInsufficientStock,
			"requested %d units of %q but stock is lower", quantity, asset.Name)
	}
	return s.findByID(ctx, asset.ID)
}

// StockReturn restores quantity to an asset. No upper bound.
func (s *Service) StockReturn(ctx context.Context, caller policy.Caller, assetID primitive.ObjectID, quantity int64) (*models.Asset, error) {
	if err := policy.Authorize(caller, policy.ActionStockReturn, caller.Email); err != nil {
		return nil, err
	}
	asset, err := s.ownedAsset(ctx, caller.Email, assetID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "quantity must be a positive integer")
	}
	if err := s.assets.IncrementQuantity(ctx, asset.ID, quantity); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "stock return failed", err)
	}
	return s.findByID(ctx, asset.ID)
}

// Restock is the internal return path used by the request lifecycle;
// authorization happens there.
func (s *Service) Restock(ctx context.Context, assetID primitive.ObjectID, quantity int64) error {
	return s.assets.IncrementQuantity(ctx, assetID, quantity)
}

// Update overwrites name, type and quantity. A rename that collides
// case-insensitively with another asset of the tenant is rejected.
func (s *Service) Update(ctx context.Context, caller policy.Caller, assetID primitive.ObjectID, name, assetType string, quantity int64) (*models.Asset, error) {
	if err := policy.Authorize(caller, policy.ActionUpdateAsset, caller.Email); err != nil {
		return nil, err
	}
	asset, err := s.ownedAsset(ctx, caller.Email, assetID)
	if err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "quantity must be a non-negative integer")
	}
	if name == "" {
		name = asset.Name
	}

	other, err := s.assets.FindByName(ctx, caller.Email, name)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "asset lookup failed", err)
	}
	if other != nil && other.ID != asset.ID {
		return nil, apperr.Newf(apperr.KindConflict, "another asset named %q already exists", name)
	}

	ok, err := s.assets.Update(ctx, asset.ID, caller.Email, name, assetType, quantity)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "asset update failed", err)
	}
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "asset not found")
	}
	return s.findByID(ctx, asset.ID)
}

// Remove hard-deletes an asset, but never while a pending or approved
// request still references it.
func (s *Service) Remove(ctx context.Context, caller policy.Caller, assetID primitive.ObjectID) error {
	if err := policy.Authorize(caller, policy.ActionRemoveAsset, caller.Email); err != nil {
		return err
	}
	asset, err := s.ownedAsset(ctx, caller.Email, assetID)
	if err != nil {
		return err
	}

	open, err := s.requests.CountOpenByAsset(ctx, caller.Email, asset.ID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "open request check failed", err)
	}
	if open > 0 {
		return apperr.Newf(apperr.KindConflict,
			"%d open request(s) still reference %q", open, asset.Name)
	}

	ok, err := s.assets.Delete(ctx, asset.ID, caller.Email)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "asset delete failed", err)
	}
	if !ok {
		return apperr.New(apperr.KindNotFound, "asset not found")
	}
	return nil
}

// LowStock lists the tenant's most depleted assets, ascending by
// quantity. Zero threshold/limit pick the defaults.
func (s *Service) LowStock(ctx context.Context, caller policy.Caller, threshold, limit int64) ([]models.Asset, error) {
	tenant := caller.Tenant
	if err := policy.Authorize(caller, policy.ActionListAssets, tenant); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	if limit <= 0 {
		limit = DefaultLowStockLimit
	}

	assets, err := s.assets.LowStock(ctx, tenant, threshold, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "low stock query failed", err)
	}
	return assets, nil
}

// ownedAsset loads the asset and enforces the tenant boundary: acting
// on another tenant's asset is Forbidden, a missing asset NotFound.
func (s *Service) ownedAsset(ctx context.Context, tenant string, id primitive.ObjectID) (*models.Asset, error) {
	asset, err := s.assets.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "asset lookup failed", err)
	}
	if asset == nil {
		return nil, apperr.New(apperr.KindNotFound, "asset not found")
	}
	if asset.HREmail != tenant {
		return nil, apperr.New(apperr.KindForbidden, "asset belongs to another company")
	}
	return asset, nil
}

func (s *Service) findByID(ctx context.Context, id primitive.ObjectID) (*models.Asset, error) {
	asset, err := s.assets.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "asset lookup failed", err)
	}
	if asset == nil {
		return nil, apperr.New(apperr.KindNotFound, "asset not found")
	}
	return asset, nil
}
