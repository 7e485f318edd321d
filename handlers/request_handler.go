// handlers/request_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/middleware"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/utils"
)

type createRequestBody struct {
	AssetName string      `json:"assetName"`
	Quantity  interface{} `json:"quantity"`
	Note      string      `json:"note,omitempty"`
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	var body createRequestBody
	if err := utils.ParseJSON(r, &body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quantity, err := utils.CoerceQuantity(body.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req, err := h.Lifecycle.Create(ctx, caller, body.AssetName, quantity, body.Note)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.Hub.NotifyRequestCreated(req.HREmail, req)
	utils.RespondWithJSON(w, http.StatusCreated, req)
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusApproved)
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusRejected)
}

func (h *Handler) ReturnRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusReturned)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, target string) {
	caller := middleware.CallerFrom(r.Context())

	requestID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req *models.Request
	switch target {
	case models.StatusApproved:
		req, err = h.Lifecycle.Approve(ctx, caller, requestID)
	case models.StatusRejected:
		req, err = h.Lifecycle.Reject(ctx, caller, requestID)
	case models.StatusReturned:
		req, err = h.Lifecycle.MarkReturned(ctx, caller, requestID)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	prior := models.StatusPending
	if target == models.StatusReturned {
		prior = models.StatusApproved
	}
	h.Hub.NotifyRequestStatus(req.HREmail, req.ID.Hex(), prior, req.Status)
	utils.RespondWithJSON(w, http.StatusOK, req)
}

// MyRequests lists the calling employee's own requests.
func (h *Handler) MyRequests(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	query := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	requests, err := h.Lifecycle.ListForEmployee(ctx, caller,
		query.Get("status"), query.Get("type"), query.Get("search"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, requests)
}

// TenantRequests lists every request of the HR manager's tenant.
func (h *Handler) TenantRequests(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	query := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	requests, err := h.Lifecycle.ListForTenant(ctx, caller,
		query.Get("status"), query.Get("type"), query.Get("search"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, requests)
}

func (h *Handler) TopRequested(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	counts, err := h.Lifecycle.TopRequested(ctx, caller, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, counts)
}

func (h *Handler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	counts, err := h.Lifecycle.StatusCounts(ctx, caller)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, counts)
}
