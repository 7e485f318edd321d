// store/memstore/memstore.go
//
// Mutex-guarded in-memory implementation of the store interfaces with
// the same conditional-update semantics as mongostore. Used by the
// engine tests, including the concurrency scenarios: every conditional
// mutation runs under one lock, so it is atomic the way a single
// MongoDB document update is.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/store"
)

type Store struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	assets   map[primitive.ObjectID]*models.Asset
	requests map[primitive.ObjectID]*models.Request
}

func New() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]*models.User),
		assets:   make(map[primitive.ObjectID]*models.Asset),
		requests: make(map[primitive.ObjectID]*models.Request),
	}
}

// Users returns the store's UserStore view.
func (s *Store) Users() store.UserStore { return (*userView)(s) }

// Assets returns the store's AssetStore view.
func (s *Store) Assets() store.AssetStore { return (*assetView)(s) }

// Requests returns the store's RequestStore view.
func (s *Store) Requests() store.RequestStore { return (*requestView)(s) }

type userView Store
type assetView Store
type requestView Store

// ---- users ----

func (v *userView) FindByEmail(_ context.Context, email string) (*models.User, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, u := range v.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (v *userView) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if u, ok := v.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (v *userView) Insert(_ context.Context, u *models.User) (primitive.ObjectID, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	c := *u
	v.users[u.ID] = &c
	return u.ID, nil
}

func (v *userView) ListUnassigned(_ context.Context) ([]models.User, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := []models.User{}
	for _, u := range v.users {
		if u.Role == models.RoleEmployee && u.HREmail == nil {
			out = append(out, *u)
		}
	}
	sortUsers(out)
	return out, nil
}

func (v *userView) ListMembers(_ context.Context, tenant string) ([]models.User, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := []models.User{}
	for _, u := range v.users {
		if u.Role == models.RoleEmployee && u.HREmail != nil && *u.HREmail == tenant {
			out = append(out, *u)
		}
	}
	sortUsers(out)
	return out, nil
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
}

func (v *userView) SetTenant(_ context.Context, id primitive.ObjectID, hrEmail *string, company, logo string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	u, ok := v.users[id]
	if !ok {
		return errNotFound
	}
	u.HREmail = hrEmail
	u.Company = company
	u.CompanyLogo = logo
	return nil
}

func (v *userView) UpdateName(_ context.Context, email, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, u := range v.users {
		if u.Email == email {
			u.Name = name
			return nil
		}
	}
	return errNotFound
}

func (v *userView) AdjustEmployeeCount(_ context.Context, email string, delta int64) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, u := range v.users {
		if u.Email == email && u.Role == models.RoleHRManager {
			if u.EmployeeCount+delta < 0 {
				return false, nil
			}
			u.EmployeeCount += delta
			return true, nil
		}
	}
	return false, nil
}

// ---- assets ----

func (v *assetView) FindByID(_ context.Context, id primitive.ObjectID) (*models.Asset, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if a, ok := v.assets[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, nil
}

func (v *assetView) FindByName(_ context.Context, tenant, name string) (*models.Asset, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	folded := models.FoldAssetName(name)
	for _, a := range v.assets {
		if a.HREmail == tenant && a.NameLower == folded {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (v *assetView) List(_ context.Context, f store.AssetFilter, s store.AssetSort) ([]models.Asset, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := []models.Asset{}
	for _, a := range v.assets {
		if a.HREmail != f.Tenant {
			continue
		}
		if f.Search != "" && !strings.Contains(a.NameLower, strings.ToLower(f.Search)) {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.StockStatus == store.StockAvailable && a.Quantity <= 0 {
			continue
		}
		if f.StockStatus == store.StockOut && a.Quantity != 0 {
			continue
		}
		out = append(out, *a)
	}

	less := func(i, j int) bool { return out[i].AddedDate.After(out[j].AddedDate) }
	switch s.Field {
	case "name":
		less = func(i, j int) bool { return out[i].NameLower < out[j].NameLower }
	case "quantity":
		less = func(i, j int) bool { return out[i].Quantity < out[j].Quantity }
	case "addedDate":
		less = func(i, j int) bool { return out[i].AddedDate.Before(out[j].AddedDate) }
	}
	if s.Field != "" && s.Descending {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.Slice(out, less)
	return out, nil
}

func (v *assetView) LowStock(_ context.Context, tenant string, threshold, limit int64) ([]models.Asset, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := []models.Asset{}
	for _, a := range v.assets {
		if a.HREmail == tenant && a.Quantity < threshold {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].NameLower < out[j].NameLower
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *assetView) Insert(_ context.Context, a *models.Asset) (primitive.ObjectID, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.NameLower = models.FoldAssetName(a.Name)
	c := *a
	v.assets[a.ID] = &c
	return a.ID, nil
}

func (v *assetView) AddQuantity(_ context.Context, id primitive.ObjectID, delta int64, assetType string, addedDate time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	a, ok := v.assets[id]
	if !ok {
		return errNotFound
	}
	a.Quantity += delta
	a.Type = assetType
	a.AddedDate = addedDate
	return nil
}

func (v *assetView) DecrementQuantity(_ context.Context, id primitive.ObjectID, qty int64) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	a, ok := v.assets[id]
	if !ok || a.Quantity < qty {
		return false, nil
	}
	a.Quantity -= qty
	return true, nil
}

func (v *assetView) IncrementQuantity(_ context.Context, id primitive.ObjectID, qty int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	a, ok := v.assets[id]
	if !ok {
		return errNotFound
	}
	a.Quantity += qty
	return nil
}

func (v *assetView) Update(_ context.Context, id primitive.ObjectID, tenant string, name, assetType string, quantity int64) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	a, ok := v.assets[id]
	if !ok || a.HREmail != tenant {
		return false, nil
	}
	a.Name = name
	a.NameLower = models.FoldAssetName(name)
	a.Type = assetType
	a.Quantity = quantity
	return true, nil
}

func (v *assetView) Delete(_ context.Context, id primitive.ObjectID, tenant string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	a, ok := v.assets[id]
	if !ok || a.HREmail != tenant {
		return false, nil
	}
	delete(v.assets, id)
	return true, nil
}

// ---- requests ----

func (v *requestView) FindByID(_ context.Context, id primitive.ObjectID) (*models.Request, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if r, ok := v.requests[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, nil
}

func (v *requestView) Insert(_ context.Context, r *models.Request) (primitive.ObjectID, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	c := *r
	v.requests[r.ID] = &c
	return r.ID, nil
}

func (v *requestView) List(_ context.Context, f store.RequestFilter) ([]models.Request, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := []models.Request{}
	for _, r := range v.requests {
		if f.Tenant != "" && r.HREmail != f.Tenant {
			continue
		}
		if f.RequesterEmail != "" && r.RequesterEmail != f.RequesterEmail {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.AssetType != "" && r.AssetType != f.AssetType {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(r.AssetName), needle) &&
				!strings.Contains(strings.ToLower(r.RequesterEmail), needle) &&
				!strings.Contains(strings.ToLower(r.RequesterName), needle) {
				continue
			}
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out, nil
}

func (v *requestView) Transition(_ context.Context, id primitive.ObjectID, from, to, dateField string, at time.Time) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r, ok := v.requests[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	switch dateField {
	case "approvalDate":
		r.ApprovalDate = &at
	case "rejectedDate":
		r.RejectedDate = &at
	case "returnedDate":
		r.ReturnedDate = &at
	}
	return true, nil
}

func (v *requestView) CountOpenByAsset(_ context.Context, tenant string, assetID primitive.ObjectID) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var n int64
	for _, r := range v.requests {
		if r.HREmail == tenant && r.AssetID == assetID &&
			(r.Status == models.StatusPending || r.Status == models.StatusApproved) {
			n++
		}
	}
	return n, nil
}

func (v *requestView) TopRequested(_ context.Context, tenant string, limit int64) ([]store.RequestCount, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	byName := make(map[string]int64)
	for _, r := range v.requests {
		if r.HREmail == tenant {
			byName[r.AssetName]++
		}
	}
	out := []store.RequestCount{}
	for name, count := range byName {
		out = append(out, store.RequestCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *requestView) StatusCounts(_ context.Context, tenant string) (store.StatusCounts, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out store.StatusCounts
	for _, r := range v.requests {
		if r.HREmail != tenant {
			continue
		}
		switch r.Status {
		case models.StatusPending:
			out.Pending++
		case models.StatusApproved:
			out.Approved++
		case models.StatusRejected:
			out.Rejected++
		case models.StatusReturned:
			out.Returned++
		}
	}
	return out, nil
}

type notFoundError struct{}

func (notFoundError) Error() string { return "memstore: document not found" }

var errNotFound = notFoundError{}
