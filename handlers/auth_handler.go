// handlers/auth_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sabbirsolid/asset-management-system-server/utils"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// IssueToken exchanges a verified email for a bearer token. Accounts
// with a local password must present it; accounts created through the
// hosted identity provider have none, and the upstream verification is
// trusted for those.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if user == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	if user.PasswordHash != "" && !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "wrong credentials")
		return
	}

	token, err := h.Tokens.Generate(user.Email, user.Role)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}
