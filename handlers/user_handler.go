// handlers/user_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/directory"
	"github.com/sabbirsolid/asset-management-system-server/middleware"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/utils"
)

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	Role        string `json:"role"`
	Company     string `json:"company,omitempty"`
	CompanyLogo string `json:"companyLogo,omitempty"`
	Seats       int64  `json:"seats,omitempty"`
}

// Register creates a user on first sign-in. Posting an email that
// already exists returns the stored record with 200, not an error.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.Role != models.RoleHRManager && req.Role != models.RoleEmployee {
		utils.RespondWithError(w, http.StatusBadRequest, "role must be HRManager or employee")
		return
	}

	user := models.User{
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		Company:       req.Company,
		CompanyLogo:   req.CompanyLogo,
		EmployeeCount: req.Seats,
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		user.PasswordHash = hash
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	stored, created, err := h.Directory.Register(ctx, user)
	if err != nil {
		respondError(w, r, err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	utils.RespondWithJSON(w, code, stored)
}

// ResolveRole is the public role lookup: unknown emails answer with
// both flags false and a null user, never 404.
func (h *Handler) ResolveRole(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	info, err := h.Directory.ResolveRole(ctx, email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, info)
}

func (h *Handler) ListUnassigned(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := h.Directory.ListUnassigned(ctx, caller)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

type assignRequest struct {
	Company     string `json:"company"`
	CompanyLogo string `json:"companyLogo"`
}

func (h *Handler) AssignMember(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req assignRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Directory.AssignMember(ctx, caller, userID, req.Company, req.CompanyLogo); err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type assignBatchRequest struct {
	UserIDs     []string `json:"userIds"`
	Company     string   `json:"company"`
	CompanyLogo string   `json:"companyLogo"`
}

// AssignMembers applies each assignment independently and reports
// per-item results; a bad id in the batch never aborts the rest.
func (h *Handler) AssignMembers(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	var req assignBatchRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.UserIDs))
	invalid := []string{}
	for _, raw := range req.UserIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			invalid = append(invalid, raw)
			continue
		}
		ids = append(ids, id)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	results, err := h.Directory.AssignMembers(ctx, caller, ids, req.Company, req.CompanyLogo)
	if err != nil {
		respondError(w, r, err)
		return
	}
	for _, raw := range invalid {
		results = append(results, directory.MemberResult{UserID: raw, Message: "invalid user id"})
	}
	utils.RespondWithJSON(w, http.StatusOK, results)
}

func (h *Handler) UnassignMember(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Directory.UnassignMember(ctx, caller, userID); err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type seatAdjustRequest struct {
	Delta interface{} `json:"delta"`
}

func (h *Handler) AdjustSeats(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	var req seatAdjustRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	delta, err := utils.CoerceQuantity(req.Delta)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.Directory.AdjustSeatCount(ctx, caller, delta)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	Name string `json:"name"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	var req profileRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Directory.UpdateProfileName(ctx, caller, req.Name); err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
