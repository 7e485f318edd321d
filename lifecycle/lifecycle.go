// lifecycle/lifecycle.go
//
// Request Lifecycle: drives requests through
// pending -> approved | rejected and approved -> returned, with the
// inventory side effects those transitions imply.
//
// Stock policy is optimistic: creation only checks availability,
// nothing is reserved. The decrement happens at approval as one unit
// of work with the status flip. Without multi-document transactions
// the order is decrement first, then the conditional status update; a
// lost status race re-increments the stock (compensating action).
package lifecycle

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/apperr"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/policy"
	"github.com/sabbirsolid/asset-management-system-server/store"
)

const DefaultTopRequestedLimit = 4

type Service struct {
	requests store.RequestStore
	assets   store.AssetStore
	now      func() time.Time
}

func New(requests store.RequestStore, assets store.AssetStore) *Service {
	return &Service{requests: requests, assets: assets, now: time.Now}
}

// Create inserts a pending request after validating the asset exists
// in the requester's tenant and currently has enough stock. Two
// pending requests may both pass the availability check against the
// same stock; approval settles who actually gets the units.
func (s *Service) Create(ctx context.Context, caller policy.Caller, assetName string, quantity int64, note string) (*models.Request, error) {
	if err := policy.Authorize(caller, policy.ActionCreateRequest, caller.Tenant); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "quantity must be a positive integer")
	}

	asset, err := s.assets.FindByName(ctx, caller.Tenant, assetName)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "asset lookup failed", err)
	}
	if asset == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "no asset named %q in your company", assetName)
	}
	if asset.Quantity < quantity {
		return nil, apperr.Newf(apperr.KindInsufficientStock,
			"requested %d units of %q but only %d in stock", quantity, asset.Name, asset.Quantity)
	}

	req := &models.Request{
		AssetID:        asset.ID,
		AssetName:      asset.Name,
		AssetType:      asset.Type,
		RequesterEmail: caller.Email,
		RequesterName:  caller.Name,
		HREmail:        asset.HREmail,
		Quantity:       quantity,
		Note:           note,
		Status:         models.StatusPending,
		RequestDate:    s.now(),
	}
	if _, err := s.requests.Insert(ctx, req); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "request insert failed", err)
	}
	return req, nil
}

// Approve moves pending -> approved and consumes the requested stock.
// Decrement and status flip are treated as one unit of work: the
// compare-and-set decrement comes first, and if the status flip then
// loses a race the stock is restored before returning the error.
func (s *Service) Approve(ctx context.Context, caller policy.Caller, requestID primitive.ObjectID) (*models.Request, error) {
	if err := policy.Authorize(caller, policy.ActionApproveRequest, caller.Email); err != nil {
		return nil, err
	}

	req, err := s.ownedRequest(ctx, caller.Email, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, apperr.Newf(apperr.KindInvalidTransition,
			"cannot approve a %s request", req.Status)
	}

	ok, err := s.assets.DecrementQuantity(ctx, req.AssetID, req.Quantity)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "stock decrement failed", err)
	}
	if !ok {
		return nil, apperr.Newf(apperr.KindInsufficientStock,
			"not enough %q in stock to approve this request", req.AssetName)
	}

	flipped, err := s.requests.Transition(ctx, requestID,
		models.StatusPending, models.StatusApproved, "approvalDate", s.now())
	if err != nil || !flipped {
		// Compensate: the units were taken but the request did not
		// become approved, so put them back.
		if rbErr := s.assets.IncrementQuantity(ctx, req.AssetID, req.Quantity); rbErr != nil {
			log.Printf("approve rollback failed for request %s: %v", requestID.Hex(), rbErr)
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "approval failed", err)
		}
		return nil, s.transitionLost(ctx, requestID, models.StatusPending)
	}

	return s.findByID(ctx, requestID)
}

// Reject moves pending -> rejected. Nothing was reserved, so there is
// no stock effect.
func (s *Service) Reject(ctx context.Context, caller policy.Caller, requestID primitive.ObjectID) (*models.Request, error) {
	if err := policy.Authorize(caller, policy.ActionRejectRequest, caller.Email); err != nil {
		return nil, err
	}

	req, err := s.ownedRequest(ctx, caller.Email, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, apperr.Newf(apperr.KindInvalidTransition,
			"cannot reject a %s request", req.Status)
	}

	flipped, err := s.requests.Transition(ctx, requestID,
		models.StatusPending, models.StatusRejected, "rejectedDate", s.now())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "rejection failed", err)
	}
	if !flipped {
		return nil, s.transitionLost(ctx, requestID, models.StatusPending)
	}
	return s.findByID(ctx, requestID)
}

// MarkReturned moves approved -> returned and restores the stock. Only
// the original requester may do this, and only for returnable assets.
func (s *Service) MarkReturned(ctx context.Context, caller policy.Caller, requestID primitive.ObjectID) (*models.Request, error) {
	if err := policy.Authorize(caller, policy.ActionReturnRequest, ""); err != nil {
		return nil, err
	}

	req, err := s.findByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireRequester(caller, req.RequesterEmail); err != nil {
		return nil, err
	}
	if req.Status != models.StatusApproved {
		return nil, apperr.Newf(apperr.KindInvalidTransition,
			"cannot return a %s request", req.Status)
	}
	if req.AssetType != models.AssetTypeReturnable {
		return nil, apperr.Newf(apperr.KindInvalidTransition,
			"%q is not a returnable asset", req.AssetName)
	}

	// The conditional flip goes first so a double return can only win
	// once; the restock follows.
	flipped, err := s.requests.Transition(ctx, requestID,
		models.StatusApproved, models.StatusReturned, "returnedDate", s.now())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "return failed", err)
	}
	if !flipped {
		return nil, s.transitionLost(ctx, requestID, models.StatusApproved)
	}

	if err := s.assets.IncrementQuantity(ctx, req.AssetID, req.Quantity); err != nil {
		// The asset may have been deleted since approval; the return
		// itself stands.
		log.Printf("restock after return failed for request %s: %v", requestID.Hex(), err)
	}
	return s.findByID(ctx, requestID)
}

// ListForEmployee lists the caller's own requests.
func (s *Service) ListForEmployee(ctx context.Context, caller policy.Caller, status, assetType, search string) ([]models.Request, error) {
	if caller.Email == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	f := store.RequestFilter{
		RequesterEmail: caller.Email,
		Status:         status,
		AssetType:      assetType,
		Search:         search,
	}
	requests, err := s.requests.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "request listing failed", err)
	}
	return requests, nil
}

// ListForTenant lists all of the HR manager's tenant requests.
func (s *Service) ListForTenant(ctx context.Context, caller policy.Caller, status, assetType, search string) ([]models.Request, error) {
	if err := policy.Authorize(caller, policy.ActionListRequests, caller.Email); err != nil {
		return nil, err
	}
	f := store.RequestFilter{
		Tenant:    caller.Email,
		Status:    status,
		AssetType: assetType,
		Search:    search,
	}
	requests, err := s.requests.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "request listing failed", err)
	}
	return requests, nil
}

// TopRequested counts requests per asset name within the caller's
// tenant, descending; ties break on name so the order is stable.
func (s *Service) TopRequested(ctx context.Context, caller policy.Caller, limit int64) ([]store.RequestCount, error) {
	tenant := caller.Tenant
	if err := policy.Authorize(caller, policy.ActionListRequests, tenant); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTopRequestedLimit
	}
	counts, err := s.requests.TopRequested(ctx, tenant, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "top requested query failed", err)
	}
	return counts, nil
}

// StatusCounts groups the tenant's requests by status, zero-filled.
func (s *Service) StatusCounts(ctx context.Context, caller policy.Caller) (store.StatusCounts, error) {
	if err := policy.Authorize(caller, policy.ActionListRequests, caller.Email); err != nil {
		return store.StatusCounts{}, err
	}
	counts, err := s.requests.StatusCounts(ctx, caller.Email)
	if err != nil {
		return store.StatusCounts{}, apperr.Wrap(apperr.KindInternal, "status count query failed", err)
	}
	return counts, nil
}

// transitionLost classifies a failed conditional transition: if the
// request moved on it is InvalidTransition, if it vanished NotFound,
// otherwise a retryable Conflict.
func (s *Service) transitionLost(ctx context.Context, id primitive.ObjectID, expected string) error {
	current, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "request lookup failed", err)
	}
	if current == nil {
		return apperr.New(apperr.KindNotFound, "request not found")
	}
	if current.Status != expected {
		return apperr.Newf(apperr.KindInvalidTransition,
			"request is already %s", current.Status)
	}
	return apperr.New(apperr.KindConflict, "concurrent update, please retry")
}

func (s *Service) ownedRequest(ctx context.Context, tenant string, id primitive.ObjectID) (*models.Request, error) {
	req, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.HREmail != tenant {
		return nil, apperr.New(apperr.KindForbidden, "request belongs to another company")
	}
	return req, nil
}

func (s *Service) findByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "request lookup failed", err)
	}
	if req == nil {
		return nil, apperr.New(apperr.KindNotFound, "request not found")
	}
	return req, nil
}
