package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/apperr"
	"github.com/sabbirsolid/asset-management-system-server/directory"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/policy"
	"github.com/sabbirsolid/asset-management-system-server/store/memstore"
)

var hrCaller = policy.Caller{Email: "hr@x.com", Role: models.RoleHRManager, Tenant: "hr@x.com"}

func newService(t *testing.T) (*directory.Service, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	svc := directory.New(st.Users())

	_, _, err := svc.Register(context.Background(), models.User{
		Name: "HR", Email: "hr@x.com", Role: models.RoleHRManager, EmployeeCount: 5,
	})
	require.NoError(t, err)
	return svc, st
}

func registerEmployee(t *testing.T, svc *directory.Service, email string) *models.User {
	t.Helper()
	u, created, err := svc.Register(context.Background(), models.User{
		Name: "Emp " + email, Email: email, Role: models.RoleEmployee,
	})
	require.NoError(t, err)
	require.True(t, created)
	return u
}

func TestRegisterIsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first := registerEmployee(t, svc, "a@x.com")

	second, created, err := svc.Register(ctx, models.User{
		Name: "Someone Else", Email: "a@x.com", Role: models.RoleEmployee,
	})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Emp a@x.com", second.Name, "duplicate registration must not overwrite")
}

func TestResolveRole(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	info, err := svc.ResolveRole(ctx, "hr@x.com")
	require.NoError(t, err)
	require.True(t, info.IsHR)
	require.False(t, info.IsEmployee)
	require.NotNil(t, info.User)

	// Unknown emails answer with both flags false, never an error.
	info, err = svc.ResolveRole(ctx, "nobody@x.com")
	require.NoError(t, err)
	require.False(t, info.IsHR)
	require.False(t, info.IsEmployee)
	require.Nil(t, info.User)
}

func TestAssignMember(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	emp := registerEmployee(t, svc, "a@x.com")

	require.NoError(t, svc.AssignMember(ctx, hrCaller, emp.ID, "Acme", "logo.png"))

	// Re-assigning the same member is a no-op success.
	require.NoError(t, svc.AssignMember(ctx, hrCaller, emp.ID, "Acme", "logo.png"))

	info, err := svc.ResolveRole(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, info.User.HREmail)
	require.Equal(t, "hr@x.com", *info.User.HREmail)
	require.Equal(t, "Acme", info.User.Company)
}

func TestAssignMemberAlreadyElsewhere(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	emp := registerEmployee(t, svc, "a@x.com")

	otherHR := policy.Caller{Email: "other@x.com", Role: models.RoleHRManager, Tenant: "other@x.com"}
	_, _, err := svc.Register(ctx, models.User{Email: "other@x.com", Role: models.RoleHRManager})
	require.NoError(t, err)

	require.NoError(t, svc.AssignMember(ctx, otherHR, emp.ID, "Globex", ""))

	err = svc.AssignMember(ctx, hrCaller, emp.ID, "Acme", "")
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAssignMemberRequiresHR(t *testing.T) {
	svc, _ := newService(t)
	emp := registerEmployee(t, svc, "a@x.com")

	empCaller := policy.Caller{Email: "a@x.com", Role: models.RoleEmployee, Tenant: "hr@x.com"}
	err := svc.AssignMember(context.Background(), empCaller, emp.ID, "Acme", "")
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestAssignMembersPartialFailure(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	good := registerEmployee(t, svc, "a@x.com")
	taken := registerEmployee(t, svc, "b@x.com")

	otherHR := policy.Caller{Email: "other@x.com", Role: models.RoleHRManager, Tenant: "other@x.com"}
	_, _, err := svc.Register(ctx, models.User{Email: "other@x.com", Role: models.RoleHRManager})
	require.NoError(t, err)
	require.NoError(t, svc.AssignMember(ctx, otherHR, taken.ID, "Globex", ""))

	results, err := svc.AssignMembers(ctx, hrCaller, []primitive.ObjectID{good.ID, taken.ID}, "Acme", "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.True(t, results[0].OK)
	require.False(t, results[1].OK)

	// The failed item did not abort the good one.
	info, err := svc.ResolveRole(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "hr@x.com", *info.User.HREmail)
}

func TestUnassignMember(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	emp := registerEmployee(t, svc, "a@x.com")
	require.NoError(t, svc.AssignMember(ctx, hrCaller, emp.ID, "Acme", ""))

	require.NoError(t, svc.UnassignMember(ctx, hrCaller, emp.ID))

	info, err := svc.ResolveRole(ctx, "a@x.com")
	require.NoError(t, err)
	require.Nil(t, info.User.HREmail)
	require.Empty(t, info.User.Company)
}

func TestUnassignForeignMemberForbidden(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	emp := registerEmployee(t, svc, "a@x.com")

	otherHR := policy.Caller{Email: "other@x.com", Role: models.RoleHRManager, Tenant: "other@x.com"}
	_, _, err := svc.Register(ctx, models.User{Email: "other@x.com", Role: models.RoleHRManager})
	require.NoError(t, err)
	require.NoError(t, svc.AssignMember(ctx, otherHR, emp.ID, "Globex", ""))

	err = svc.UnassignMember(ctx, hrCaller, emp.ID)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestListUnassigned(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	registerEmployee(t, svc, "free@x.com")
	member := registerEmployee(t, svc, "member@x.com")
	require.NoError(t, svc.AssignMember(ctx, hrCaller, member.ID, "Acme", ""))

	list, err := svc.ListUnassigned(ctx, hrCaller)
	require.NoError(t, err)
	require.Len(t, list.UnemployedUsers, 1)
	require.Equal(t, "free@x.com", list.UnemployedUsers[0].Email)
	require.NotNil(t, list.HRInfo)
	require.Equal(t, "hr@x.com", list.HRInfo.Email)
	require.Len(t, list.Members, 1)
	require.Equal(t, "member@x.com", list.Members[0].Email)
}

func TestAdjustSeatCount(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	user, err := svc.AdjustSeatCount(ctx, hrCaller, 10)
	require.NoError(t, err)
	require.Equal(t, int64(15), user.EmployeeCount)

	user, err = svc.AdjustSeatCount(ctx, hrCaller, -15)
	require.NoError(t, err)
	require.Equal(t, int64(0), user.EmployeeCount)

	// Decrementing below zero is rejected, not clamped.
	_, err = svc.AdjustSeatCount(ctx, hrCaller, -1)
	require.Equal(t, apperr.KindInvalidQuantity, apperr.KindOf(err))
}

func TestUpdateProfileName(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateProfileName(ctx, hrCaller, "New Name"))

	info, err := svc.ResolveRole(ctx, "hr@x.com")
	require.NoError(t, err)
	require.Equal(t, "New Name", info.User.Name)
}
