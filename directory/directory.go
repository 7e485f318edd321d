// directory/directory.go
//
// Tenant Directory: resolves identities to roles and tenants, and
// manages which employees belong to which HR manager's company.
package directory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/apperr"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/policy"
	"github.com/sabbirsolid/asset-management-system-server/store"
)

type Service struct {
	users store.UserStore
	now   func() time.Time
}

func New(users store.UserStore) *Service {
	return &Service{users: users, now: time.Now}
}

// RoleInfo mirrors the role lookup response: both flags false and a
// nil user when the email is unknown. A missing user is not an error.
type RoleInfo struct {
	IsHR       bool         `json:"isHR"`
	IsEmployee bool         `json:"isEmployee"`
	User       *models.User `json:"user"`
}

func (s *Service) ResolveRole(ctx context.Context, email string) (RoleInfo, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return RoleInfo{}, apperr.Wrap(apperr.KindInternal, "user lookup failed", err)
	}
	if user == nil {
		return RoleInfo{}, nil
	}
	return RoleInfo{
		IsHR:       user.Role == models.RoleHRManager,
		IsEmployee: user.Role == models.RoleEmployee,
		User:       user,
	}, nil
}

// Register creates the user on first sign-in. Registering an email
// that already exists returns the existing record untouched.
func (s *Service) Register(ctx context.Context, u models.User) (*models.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, false, apperr.Wrap(apperr.KindInternal, "user lookup failed", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	u.CreatedAt = s.now()
	if u.Role == models.RoleHRManager {
		// HR managers own the tenant named by their email.
		email := u.Email
		u.HREmail = &email
	}
	if _, err := s.users.Insert(ctx, &u); err != nil {
		return nil, false, apperr.Wrap(apperr.KindInternal, "user insert failed", err)
	}
	return &u, true, nil
}

// UnassignedList is the three-part response for the HR "add employee"
// page: employees with no company, the HR manager's own record and the
// current member list. Three independent queries, no cross-checks.
type UnassignedList struct {
	UnemployedUsers []models.User `json:"unemployedUsers"`
	HRInfo          *models.User  `json:"hrInfo"`
	Members         []models.User `json:"members"`
}

func (s *Service) ListUnassigned(ctx context.Context, caller policy.Caller) (UnassignedList, error) {
	if err := policy.Authorize(caller, policy.ActionListUnassigned, caller.Email); err != nil {
		return UnassignedList{}, err
	}

	unemployed, err := s.users.ListUnassigned(ctx)
	if err != nil {
		return UnassignedList{}, apperr.Wrap(apperr.KindInternal, "unassigned lookup failed", err)
	}
	hrInfo, err := s.users.FindByEmail(ctx, caller.Email)
	if err != nil {
		return UnassignedList{}, apperr.Wrap(apperr.KindInternal, "hr lookup failed", err)
	}
	members, err := s.users.ListMembers(ctx, caller.Email)
	if err != nil {
		return UnassignedList{}, apperr.Wrap(apperr.KindInternal, "member lookup failed", err)
	}

	return UnassignedList{UnemployedUsers: unemployed, HRInfo: hrInfo, Members: members}, nil
}

// AssignMember puts an employee into the caller's company. Assigning a
// user who is already a member of that company is a no-op success.
func (s *Service) AssignMember(ctx context.Context, caller policy.Caller, userID primitive.ObjectID, company, logo string) error {
	if err := policy.Authorize(caller, policy.ActionAssignMember, caller.Email); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "user lookup failed", err)
	}
	if user == nil {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	if user.Role != models.RoleEmployee {
		return apperr.New(apperr.KindConflict, "only employees can be added to a company")
	}
	if user.HREmail != nil {
		if *user.HREmail == caller.Email {
			return nil
		}
		return apperr.New(apperr.KindConflict, "user already belongs to another company")
	}

	hrEmail := caller.Email
	if err := s.users.SetTenant(ctx, userID, &hrEmail, company, logo); err != nil {
		return apperr.Wrap(apperr.KindInternal, "member assignment failed", err)
	}
	return nil
}

// MemberResult reports one item of a batch assignment.
type MemberResult struct {
	UserID  string `json:"userId"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// AssignMembers applies AssignMember to each id independently; one
// failure never aborts the rest.
func (s *Service) AssignMembers(ctx context.Context, caller policy.Caller, userIDs []primitive.ObjectID, company, logo string) ([]MemberResult, error) {
	if err := policy.Authorize(caller, policy.ActionAssignMember, caller.Email); err != nil {
		return nil, err
	}

	results := make([]MemberResult, 0, len(userIDs))
	for _, id := range userIDs {
		res := MemberResult{UserID: id.Hex(), OK: true}
		if err := s.AssignMember(ctx, caller, id, company, logo); err != nil {
			res.OK = false
			res.Message = apperr.PublicMessage(err)
		}
		results = append(results, res)
	}
	return results, nil
}

// UnassignMember clears the member's tenant fields. Their existing
// requests are left in place as history.
func (s *Service) UnassignMember(ctx context.Context, caller policy.Caller, userID primitive.ObjectID) error {
	if err := policy.Authorize(caller, policy.ActionUnassignMember, caller.Email); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "user lookup failed", err)
	}
	if user == nil {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	if user.HREmail == nil || *user.HREmail != caller.Email {
		return apperr.New(apperr.KindForbidden, "user is not a member of your company")
	}

	if err := s.users.SetTenant(ctx, userID, nil, "", ""); err != nil {
		return apperr.Wrap(apperr.KindInternal, "member removal failed", err)
	}
	return nil
}

// AdjustSeatCount adds delta (possibly negative) to the caller's seat
// allowance. An over-decrement is rejected rather than clamped.
func (s *Service) AdjustSeatCount(ctx context.Context, caller policy.Caller, delta int64) (*models.User, error) {
	if err := policy.Authorize(caller, policy.ActionAdjustSeats, caller.Email); err != nil {
		return nil, err
	}

	ok, err := s.users.AdjustEmployeeCount(ctx, caller.Email, delta)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "seat adjustment failed", err)
	}
	if !ok {
		return nil, apperr.New(apperr.KindInvalidQuantity, "seat count cannot go below zero")
	}

	user, err := s.users.FindByEmail(ctx, caller.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "user lookup failed", err)
	}
	return user, nil
}

// UpdateProfileName is the only self-service profile edit.
func (s *Service) UpdateProfileName(ctx context.Context, caller policy.Caller, name string) error {
	if caller.Email == "" {
		return apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	if name == "" {
		return apperr.New(apperr.KindConflict, "name cannot be empty")
	}
	if err := s.users.UpdateName(ctx, caller.Email, name); err != nil {
		return apperr.Wrap(apperr.KindInternal, "profile update failed", err)
	}
	return nil
}
