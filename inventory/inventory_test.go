package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/apperr"
	"github.com/sabbirsolid/asset-management-system-server/inventory"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/policy"
	"github.com/sabbirsolid/asset-management-system-server/store"
	"github.com/sabbirsolid/asset-management-system-server/store/memstore"
)

var (
	hrA = policy.Caller{Email: "hrA@x.com", Role: models.RoleHRManager, Tenant: "hrA@x.com"}
	hrB = policy.Caller{Email: "hrB@x.com", Role: models.RoleHRManager, Tenant: "hrB@x.com"}
)

func newService() (*inventory.Service, *memstore.Store) {
	st := memstore.New()
	return inventory.New(st.Assets(), st.Requests()), st
}

func stockIn(t *testing.T, svc *inventory.Service, caller policy.Caller, name string, qty int64) *models.Asset {
	t.Helper()
	asset, err := svc.StockIn(context.Background(), caller, name, models.AssetTypeReturnable, qty)
	require.NoError(t, err)
	return asset
}

func TestStockInCreatesThenMergesCaseInsensitively(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	first := stockIn(t, svc, hrA, "Laptop", 5)
	require.Equal(t, int64(5), first.Quantity)

	// A different casing of the name hits the same record.
	merged, err := svc.StockIn(ctx, hrA, "laptop", models.AssetTypeReturnable, 3)
	require.NoError(t, err)
	require.Equal(t, first.ID, merged.ID)
	require.Equal(t, int64(8), merged.Quantity)
}

func TestStockInRejectsNegativeQuantity(t *testing.T) {
	svc, _ := newService()

	_, err := svc.StockIn(context.Background(), hrA, "Laptop", models.AssetTypeReturnable, -1)
	require.Equal(t, apperr.KindInvalidQuantity, apperr.KindOf(err))
}

func TestStockInForbiddenForEmployee(t *testing.T) {
	svc, _ := newService()
	emp := policy.Caller{Email: "e@x.com", Role: models.RoleEmployee, Tenant: "hrA@x.com"}

	_, err := svc.StockIn(context.Background(), emp, "Laptop", models.AssetTypeReturnable, 1)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestStockOutRoundTrip(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	asset := stockIn(t, svc, hrA, "Monitor", 7)

	after, err := svc.StockOut(ctx, hrA, asset.ID, 7)
	require.NoError(t, err)
	require.Equal(t, int64(0), after.Quantity)

	restored, err := svc.StockReturn(ctx, hrA, asset.ID, 7)
	require.NoError(t, err)
	require.Equal(t, asset.Quantity, restored.Quantity)
}

func TestStockOutInsufficient(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	asset := stockIn(t, svc, hrA, "Monitor", 2)

	_, err := svc.StockOut(ctx, hrA, asset.ID, 3)
	require.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	// Nothing was consumed by the failed attempt.
	list, err := svc.List(ctx, hrA, store.AssetFilter{}, store.AssetSort{})
	require.NoError(t, err)
	require.Equal(t, int64(2), list[0].Quantity)
}

func TestConcurrentStockOutNeverGoesNegative(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	asset := stockIn(t, svc, hrA, "Keyboard", 8)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.StockOut(ctx, hrA, asset.ID, 5)
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			require.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
			failures++
		}
	}
	require.Equal(t, 1, failures, "exactly one of the two decrements must lose")

	list, err := svc.List(ctx, hrA, store.AssetFilter{}, store.AssetSort{})
	require.NoError(t, err)
	require.Equal(t, int64(3), list[0].Quantity)
}

func TestTenantIsolation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	asset := stockIn(t, svc, hrA, "Chair", 4)

	_, err := svc.StockOut(ctx, hrB, asset.ID, 1)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = svc.Remove(ctx, hrB, asset.ID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// And tenant B's listing never shows tenant A's asset.
	list, err := svc.List(ctx, hrB, store.AssetFilter{}, store.AssetSort{})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestListFilters(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	stockIn(t, svc, hrA, "Laptop Stand", 3)
	stockIn(t, svc, hrA, "Desk Lamp", 0)
	_, err := svc.StockIn(ctx, hrA, "Notebook", models.AssetTypeNonReturnable, 10)
	require.NoError(t, err)

	list, err := svc.List(ctx, hrA, store.AssetFilter{Search: "la"}, store.AssetSort{Field: "name"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Desk Lamp", list[0].Name)
	require.Equal(t, "Laptop Stand", list[1].Name)

	list, err = svc.List(ctx, hrA, store.AssetFilter{StockStatus: store.StockOut}, store.AssetSort{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Desk Lamp", list[0].Name)

	list, err = svc.List(ctx, hrA, store.AssetFilter{Type: models.AssetTypeNonReturnable}, store.AssetSort{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Notebook", list[0].Name)
}

func TestUpdateRejectsNameCollision(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	stockIn(t, svc, hrA, "Laptop", 5)
	other := stockIn(t, svc, hrA, "Monitor", 2)

	_, err := svc.Update(ctx, hrA, other.ID, "LAPTOP", models.AssetTypeReturnable, 2)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// Renaming to itself with different casing is fine.
	updated, err := svc.Update(ctx, hrA, other.ID, "MONITOR", models.AssetTypeReturnable, 6)
	require.NoError(t, err)
	require.Equal(t, "MONITOR", updated.Name)
	require.Equal(t, int64(6), updated.Quantity)
}

func TestRemoveBlockedByOpenRequests(t *testing.T) {
	svc, st := newService()
	ctx := context.Background()

	asset := stockIn(t, svc, hrA, "Laptop", 5)

	_, err := st.Requests().Insert(ctx, &models.Request{
		AssetID:        asset.ID,
		AssetName:      asset.Name,
		HREmail:        hrA.Email,
		RequesterEmail: "e@x.com",
		Quantity:       1,
		Status:         models.StatusPending,
	})
	require.NoError(t, err)

	err = svc.Remove(ctx, hrA, asset.ID)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRemove(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	asset := stockIn(t, svc, hrA, "Laptop", 5)
	require.NoError(t, svc.Remove(ctx, hrA, asset.ID))

	err := svc.Remove(ctx, hrA, asset.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRemoveUnknownAsset(t *testing.T) {
	svc, _ := newService()

	err := svc.Remove(context.Background(), hrA, primitive.NewObjectID())
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestLowStockOrderingAndLimit(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	stockIn(t, svc, hrA, "Plenty", 50)
	stockIn(t, svc, hrA, "Scarce", 2)
	stockIn(t, svc, hrA, "Empty", 0)
	stockIn(t, svc, hrA, "Low", 5)

	assets, err := svc.LowStock(ctx, hrA, 10, 2)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, "Empty", assets[0].Name)
	require.Equal(t, "Scarce", assets[1].Name)
}
