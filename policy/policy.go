// policy/policy.go
package policy

import (
	"github.com/sabbirsolid/asset-management-system-server/apperr"
	"github.com/sabbirsolid/asset-management-system-server/models"
)

// Action names every gated operation in the engine.
type Action string

const (
	ActionAssignMember   Action = "assignMember"
	ActionUnassignMember Action = "unassignMember"
	ActionListUnassigned Action = "listUnassigned"
	ActionAdjustSeats    Action = "adjustSeats"

	ActionListAssets  Action = "listAssets"
	ActionStockIn     Action = "stockIn"
	ActionStockOut    Action = "stockOut"
	ActionStockReturn Action = "stockReturn"
	ActionUpdateAsset Action = "updateAsset"
	ActionRemoveAsset Action = "removeAsset"

	ActionCreateRequest  Action = "createRequest"
	ActionApproveRequest Action = "approveRequest"
	ActionRejectRequest  Action = "rejectRequest"
	ActionReturnRequest  Action = "returnRequest"
	ActionListRequests   Action = "listRequests"

	ActionPostNotice Action = "postNotice"
)

// Caller is the verified identity attached to an operation. Tenant is
// the resolved tenant key: the caller's own email for an HRManager,
// the owning hrEmail for an assigned employee, empty otherwise.
type Caller struct {
	Email  string
	Name   string
	Role   string
	Tenant string
}

func hrOnly(action Action) bool {
	switch action {
	case ActionAssignMember, ActionUnassignMember, ActionListUnassigned,
		ActionAdjustSeats, ActionStockIn, ActionStockOut, ActionStockReturn,
		ActionUpdateAsset, ActionRemoveAsset, ActionApproveRequest,
		ActionRejectRequest, ActionPostNotice:
		return true
	}
	return false
}

func employeeOnly(action Action) bool {
	return action == ActionCreateRequest || action == ActionReturnRequest
}

// Authorize is the single permission predicate for the engine: given a
// verified caller, the action and the tenant being acted on, it returns
// nil to allow or a typed Unauthorized/Forbidden error. It reads no
// storage and has no side effects; callers run it before any mutation.
//
// A tenant is identified by its HR owner's email, so HR-gated actions
// require the target tenant to be the caller's own email.
func Authorize(caller Caller, action Action, targetTenant string) error {
	if caller.Email == "" {
		return apperr.New(apperr.KindUnauthorized, "authentication required")
	}

	switch {
	case hrOnly(action):
		if caller.Role != models.RoleHRManager {
			return apperr.Newf(apperr.KindForbidden, "%s requires the HRManager role", action)
		}
		if targetTenant != caller.Email {
			return apperr.New(apperr.KindForbidden, "cannot act on another HR manager's tenant")
		}
	case employeeOnly(action):
		if caller.Role != models.RoleEmployee {
			return apperr.Newf(apperr.KindForbidden, "%s requires the employee role", action)
		}
		if caller.Tenant == "" {
			return apperr.New(apperr.KindForbidden, "employee is not assigned to a company")
		}
		if targetTenant != "" && targetTenant != caller.Tenant {
			return apperr.New(apperr.KindForbidden, "asset belongs to another company")
		}
	case action == ActionListAssets || action == ActionListRequests:
		// Read paths: any assigned identity may list within its own
		// tenant; HR managers list their own tenant only.
		if caller.Role == models.RoleHRManager {
			if targetTenant != caller.Email {
				return apperr.New(apperr.KindForbidden, "cannot list another HR manager's tenant")
			}
		} else if caller.Tenant == "" || targetTenant != caller.Tenant {
			return apperr.New(apperr.KindForbidden, "not a member of this company")
		}
	default:
		return apperr.Newf(apperr.KindForbidden, "unknown action %q", action)
	}

	return nil
}

// RequireRequester allows the mark-returned path only for the identity
// that created the request.
func RequireRequester(caller Caller, requesterEmail string) error {
	if caller.Email == "" {
		return apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	if caller.Email != requesterEmail {
		return apperr.New(apperr.KindForbidden, "only the requester may return this asset")
	}
	return nil
}
