package policy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sabbirsolid/asset-management-system-server/apperr"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/policy"
)

var (
	hrA = policy.Caller{Email: "hrA@x.com", Role: models.RoleHRManager, Tenant: "hrA@x.com"}
	hrB = policy.Caller{Email: "hrB@x.com", Role: models.RoleHRManager, Tenant: "hrB@x.com"}
	emp = policy.Caller{Email: "emp@x.com", Role: models.RoleEmployee, Tenant: "hrA@x.com"}

	unassigned = policy.Caller{Email: "new@x.com", Role: models.RoleEmployee}
	anonymous  = policy.Caller{}
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		caller policy.Caller
		action policy.Action
		tenant string
		want   apperr.Kind
	}{
		{"anonymous denied", anonymous, policy.ActionListAssets, "hrA@x.com", apperr.KindUnauthorized},
		{"hr manages own tenant", hrA, policy.ActionStockIn, "hrA@x.com", 0},
		{"hr denied on foreign tenant", hrB, policy.ActionStockIn, "hrA@x.com", apperr.KindForbidden},
		{"hr approves own tenant", hrA, policy.ActionApproveRequest, "hrA@x.com", 0},
		{"hr denied approving foreign tenant", hrA, policy.ActionApproveRequest, "hrB@x.com", apperr.KindForbidden},
		{"employee cannot stock in", emp, policy.ActionStockIn, "hrA@x.com", apperr.KindForbidden},
		{"employee requests within own tenant", emp, policy.ActionCreateRequest, "hrA@x.com", 0},
		{"employee denied foreign tenant request", emp, policy.ActionCreateRequest, "hrB@x.com", apperr.KindForbidden},
		{"unassigned employee cannot request", unassigned, policy.ActionCreateRequest, "", apperr.KindForbidden},
		{"hr cannot create requests", hrA, policy.ActionCreateRequest, "hrA@x.com", apperr.KindForbidden},
		{"employee lists own tenant", emp, policy.ActionListAssets, "hrA@x.com", 0},
		{"employee denied listing foreign tenant", emp, policy.ActionListAssets, "hrB@x.com", apperr.KindForbidden},
		{"hr lists own tenant requests", hrA, policy.ActionListRequests, "hrA@x.com", 0},
		{"unknown action denied", hrA, "frobnicate", "hrA@x.com", apperr.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(tt.caller, tt.action, tt.tenant)
			if tt.want == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestRequireRequester(t *testing.T) {
	require.NoError(t, policy.RequireRequester(emp, "emp@x.com"))

	err := policy.RequireRequester(emp, "other@x.com")
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = policy.RequireRequester(anonymous, "emp@x.com")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
