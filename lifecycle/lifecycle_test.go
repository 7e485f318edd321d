package lifecycle_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/apperr"
	"github.com/sabbirsolid/asset-management-system-server/lifecycle"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/policy"
	"github.com/sabbirsolid/asset-management-system-server/store/memstore"
)

var (
	hrA  = policy.Caller{Email: "hrA@x.com", Role: models.RoleHRManager, Tenant: "hrA@x.com"}
	hrB  = policy.Caller{Email: "hrB@x.com", Role: models.RoleHRManager, Tenant: "hrB@x.com"}
	empA = policy.Caller{Email: "empA@x.com", Name: "Emp A", Role: models.RoleEmployee, Tenant: "hrA@x.com"}
	empB = policy.Caller{Email: "empB@x.com", Name: "Emp B", Role: models.RoleEmployee, Tenant: "hrB@x.com"}
)

type fixture struct {
	svc *lifecycle.Service
	st  *memstore.Store
}

func newFixture() *fixture {
	st := memstore.New()
	return &fixture{svc: lifecycle.New(st.Requests(), st.Assets()), st: st}
}

func (f *fixture) seedAsset(t *testing.T, tenant, name string, qty int64) *models.Asset {
	t.Helper()
	return f.seedTypedAsset(t, tenant, name, models.AssetTypeReturnable, qty)
}

func (f *fixture) seedTypedAsset(t *testing.T, tenant, name, assetType string, qty int64) *models.Asset {
	t.Helper()
	asset := &models.Asset{Name: name, Type: assetType, Quantity: qty, HREmail: tenant}
	_, err := f.st.Assets().Insert(context.Background(), asset)
	require.NoError(t, err)
	return asset
}

func (f *fixture) assetQuantity(t *testing.T, id primitive.ObjectID) int64 {
	t.Helper()
	asset, err := f.st.Assets().FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, asset)
	return asset.Quantity
}

func TestCreateRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.seedAsset(t, hrA.Email, "Laptop", 5)

	req, err := f.svc.Create(ctx, empA, "laptop", 2, "for onboarding")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, req.Status)
	require.Equal(t, asset.ID, req.AssetID)
	require.Equal(t, "Laptop", req.AssetName)
	require.Equal(t, hrA.Email, req.HREmail)

	// Creation does not reserve stock.
	require.Equal(t, int64(5), f.assetQuantity(t, asset.ID))
}

func TestCreateInsufficientStockInsertsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedAsset(t, hrA.Email, "Laptop", 2)

	_, err := f.svc.Create(ctx, empA, "Laptop", 3, "")
	require.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	requests, err := f.svc.ListForTenant(ctx, hrA, "", "", "")
	require.NoError(t, err)
	require.Empty(t, requests)
}

func TestCreateUnknownAsset(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), empA, "Ghost", 1, "")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateForeignTenantAsset(t *testing.T) {
	f := newFixture()
	f.seedAsset(t, hrB.Email, "Laptop", 5)

	// The asset only exists in tenant B; for empA it is simply absent.
	_, err := f.svc.Create(context.Background(), empA, "Laptop", 1, "")
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestApproveDecrementsStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.seedAsset(t, hrA.Email, "Laptop", 5)

	req, err := f.svc.Create(ctx, empA, "Laptop", 2, "")
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, hrA, req.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovalDate)
	require.Equal(t, int64(3), f.assetQuantity(t, asset.ID))
}

func TestApproveInsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.seedAsset(t, hrA.Email, "Laptop", 3)

	// Two pending requests can both pass the creation check.
	first, err := f.svc.Create(ctx, empA, "Laptop", 2, "")
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, empA, "Laptop", 2, "")
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, hrA, first.ID)
	require.NoError(t, err)

	// Approval settles the race: the second request cannot be filled.
	_, err = f.svc.Approve(ctx, hrA, second.ID)
	require.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
	require.Equal(t, int64(1), f.assetQuantity(t, asset.ID))

	stored, err := f.st.Requests().FindByID(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, stored.Status, "failed approval leaves the request pending")
}

func TestApproveRejectedRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.seedAsset(t, hrA.Email, "Laptop", 5)

	req, err := f.svc.Create(ctx, empA, "Laptop", 1, "")
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, hrA, req.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, hrA, req.ID)
	require.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	stored, err := f.st.Requests().FindByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, stored.Status)
	require.Nil(t, stored.ApprovalDate)
	require.Equal(t, int64(5), f.assetQuantity(t, asset.ID))
}

func TestRejectHasNoStockEffect(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.seedAsset(t, hrA.Email, "Laptop", 5)

	req, err := f.svc.Create(ctx, empA, "Laptop", 2, "")
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, hrA, req.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectedDate)
	require.Equal(t, int64(5), f.assetQuantity(t, asset.ID))
}

func TestConcurrentApproveRejectOnlyOneWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.seedAsset(t, hrA.Email, "Laptop", 5)

	req, err := f.svc.Create(ctx, empA, "Laptop", 2, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var approveErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, approveErr = f.svc.Approve(ctx, hrA, req.ID)
	}()
	go func() {
		defer wg.Done()
		_, rejectErr = f.svc.Reject(ctx, hrA, req.ID)
	}()
	wg.Wait()

	require.True(t, (approveErr == nil) != (rejectErr == nil),
		"exactly one of approve/reject must win, got approve=%v reject=%v", approveErr, rejectErr)

	stored, err := f.st.Requests().FindByID(ctx, req.ID)
	require.NoError(t, err)
	if approveErr == nil {
		require.Equal(t, models.StatusApproved, stored.Status)
		require.Equal(t, int64(3), f.assetQuantity(t, asset.ID))
	} else {
		require.Equal(t, models.StatusRejected, stored.Status)
		// The loser's compensating increment restored the stock.
		require.Equal(t, int64(5), f.assetQuantity(t, asset.ID))
	}
}

func TestMarkReturnedRestoresStockOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.seedAsset(t, hrA.Email, "Laptop", 5)

	req, err := f.svc.Create(ctx, empA, "Laptop", 2, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, hrA, req.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), f.assetQuantity(t, asset.ID))

	returned, err := f.svc.MarkReturned(ctx, empA, req.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnedDate)
	require.Equal(t, int64(5), f.assetQuantity(t, asset.ID))

	// A second return fails and does not double-restock.
	_, err = f.svc.MarkReturned(ctx, empA, req.ID)
	require.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	require.Equal(t, int64(5), f.assetQuantity(t, asset.ID))
}

func TestMarkReturnedRequiresRequester(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedAsset(t, hrA.Email, "Laptop", 5)

	req, err := f.svc.Create(ctx, empA, "Laptop", 1, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, hrA, req.ID)
	require.NoError(t, err)

	other := policy.Caller{Email: "other@x.com", Role: models.RoleEmployee, Tenant: "hrA@x.com"}
	_, err = f.svc.MarkReturned(ctx, other, req.ID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestMarkReturnedPendingRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedAsset(t, hrA.Email, "Laptop", 5)

	req, err := f.svc.Create(ctx, empA, "Laptop", 1, "")
	require.NoError(t, err)

	_, err = f.svc.MarkReturned(ctx, empA, req.ID)
	require.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestMarkReturnedNonReturnableAsset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedTypedAsset(t, hrA.Email, "Notebook", models.AssetTypeNonReturnable, 5)

	req, err := f.svc.Create(ctx, empA, "Notebook", 1, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, hrA, req.ID)
	require.NoError(t, err)

	_, err = f.svc.MarkReturned(ctx, empA, req.ID)
	require.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestTenantIsolationOnTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedAsset(t, hrA.Email, "Laptop", 5)

	req, err := f.svc.Create(ctx, empA, "Laptop", 1, "")
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, hrB, req.ID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.svc.Reject(ctx, hrB, req.ID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// Tenant B's listing never shows it either.
	list, err := f.svc.ListForTenant(ctx, hrB, "", "", "")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestListForEmployeeScopeAndFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedAsset(t, hrA.Email, "Laptop", 10)
	f.seedAsset(t, hrB.Email, "Chair", 10)

	mine, err := f.svc.Create(ctx, empA, "Laptop", 1, "")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, empB, "Chair", 1, "")
	require.NoError(t, err)

	list, err := f.svc.ListForEmployee(ctx, empA, "", "", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, mine.ID, list[0].ID)

	list, err = f.svc.ListForEmployee(ctx, empA, models.StatusApproved, "", "")
	require.NoError(t, err)
	require.Empty(t, list)

	list, err = f.svc.ListForEmployee(ctx, empA, "", "", "lap")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestTopRequested(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedAsset(t, hrA.Email, "Laptop", 100)
	f.seedAsset(t, hrA.Email, "Mouse", 100)
	f.seedAsset(t, hrA.Email, "Chair", 100)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, empA, "Laptop", 1, "")
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(ctx, empA, "Mouse", 1, "")
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(ctx, empA, "Chair", 1, "")
		require.NoError(t, err)
	}

	counts, err := f.svc.TopRequested(ctx, hrA, 2)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, "Laptop", counts[0].Name)
	require.Equal(t, int64(3), counts[0].Count)
	// Ties break on name ascending.
	require.Equal(t, "Chair", counts[1].Name)
}

func TestStatusCountsZeroFilled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedAsset(t, hrA.Email, "Laptop", 10)

	counts, err := f.svc.StatusCounts(ctx, hrA)
	require.NoError(t, err)
	require.Zero(t, counts.Pending)
	require.Zero(t, counts.Approved)
	require.Zero(t, counts.Rejected)
	require.Zero(t, counts.Returned)

	req, err := f.svc.Create(ctx, empA, "Laptop", 1, "")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, empA, "Laptop", 1, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, hrA, req.ID)
	require.NoError(t, err)

	counts, err = f.svc.StatusCounts(ctx, hrA)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.Pending)
	require.Equal(t, int64(1), counts.Approved)
	require.Zero(t, counts.Rejected)
}

func TestCreateRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture()
	f.seedAsset(t, hrA.Email, "Laptop", 5)

	_, err := f.svc.Create(context.Background(), empA, "Laptop", 0, "")
	require.Equal(t, apperr.KindInvalidQuantity, apperr.KindOf(err))

	_, err = f.svc.Create(context.Background(), empA, "Laptop", -2, "")
	require.Equal(t, apperr.KindInvalidQuantity, apperr.KindOf(err))
}
