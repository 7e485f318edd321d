// handlers/notice_handler.go
//
// Notices are pass-through persistence: a tenant announcement board
// with no lifecycle logic.
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sabbirsolid/asset-management-system-server/middleware"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/policy"
	"github.com/sabbirsolid/asset-management-system-server/utils"
)

func (h *Handler) ListNotices(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	if caller.Tenant == "" {
		utils.RespondWithError(w, http.StatusForbidden, "not a member of any company")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "postedAt", Value: -1}})
	cursor, err := h.Notices.Find(ctx, bson.M{"hrEmail": caller.Tenant}, opts)
	if err != nil {
		log.Printf("notices Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer cursor.Close(ctx)

	var notices []models.Notice
	if err := cursor.All(ctx, &notices); err != nil {
		log.Printf("notices decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if notices == nil {
		notices = []models.Notice{}
	}
	utils.RespondWithJSON(w, http.StatusOK, notices)
}

type noticeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (h *Handler) CreateNotice(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	if err := policy.Authorize(caller, policy.ActionPostNotice, caller.Email); err != nil {
		respondError(w, r, err)
		return
	}

	var req noticeRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "title is required")
		return
	}

	notice := models.Notice{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Description: req.Description,
		HREmail:     caller.Email,
		PostedAt:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Notices.InsertOne(ctx, notice); err != nil {
		log.Printf("notice insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, notice)
}

func (h *Handler) DeleteNotice(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	if err := policy.Authorize(caller, policy.ActionPostNotice, caller.Email); err != nil {
		respondError(w, r, err)
		return
	}

	noticeID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid notice id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Notices.DeleteOne(ctx, bson.M{"_id": noticeID, "hrEmail": caller.Email})
	if err != nil {
		log.Printf("notice delete error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "notice not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
