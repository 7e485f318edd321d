// handlers/ws_handler.go
package handlers

import (
	"net/http"

	"github.com/sabbirsolid/asset-management-system-server/utils"
)

// ServeWS subscribes a client to its tenant's live feed. Browsers
// cannot set headers on WebSocket upgrades, so the token rides in the
// query string.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "token query parameter required")
		return
	}

	claims, err := h.Tokens.Validate(token)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	user, err := h.Users.FindByEmail(r.Context(), claims.Email)
	if err != nil || user == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "user not found")
		return
	}

	tenant := user.Tenant()
	if tenant == "" {
		utils.RespondWithError(w, http.StatusForbidden, "not a member of any company")
		return
	}

	h.Hub.ServeWS(w, r, tenant, user.Email)
}
