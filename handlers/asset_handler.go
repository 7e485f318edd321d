// handlers/asset_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sabbirsolid/asset-management-system-server/middleware"
	"github.com/sabbirsolid/asset-management-system-server/store"
	"github.com/sabbirsolid/asset-management-system-server/utils"
)

// ListAssets returns the caller's tenant assets with optional search,
// type and stockStatus filters plus sorting. The tenant always comes
// from the resolved identity, never from the query string.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	query := r.URL.Query()

	filter := store.AssetFilter{
		Search:      query.Get("search"),
		Type:        query.Get("type"),
		StockStatus: query.Get("stockStatus"),
	}
	sort := store.AssetSort{
		Field:      query.Get("sortBy"),
		Descending: query.Get("order") == "desc",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assets, err := h.Inventory.List(ctx, caller, filter, sort)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, assets)
}

type stockInRequest struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Quantity interface{} `json:"quantity"`
}

func (h *Handler) StockIn(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	var req stockInRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quantity, err := utils.CoerceQuantity(req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	asset, err := h.Inventory.StockIn(ctx, caller, req.Name, req.Type, quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.Hub.NotifyStockChange(caller.Email, asset.ID.Hex(), asset.Name, asset.Quantity)
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

type quantityRequest struct {
	Quantity interface{} `json:"quantity"`
}

func (h *Handler) StockOut(w http.ResponseWriter, r *http.Request) {
	h.stockMove(w, r, false)
}

func (h *Handler) StockReturn(w http.ResponseWriter, r *http.Request) {
	h.stockMove(w, r, true)
}

func (h *Handler) stockMove(w http.ResponseWriter, r *http.Request, returning bool) {
	caller := middleware.CallerFrom(r.Context())

	assetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req quantityRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quantity, err := utils.CoerceQuantity(req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	move := h.Inventory.StockOut
	if returning {
		move = h.Inventory.StockReturn
	}
	asset, err := move(ctx, caller, assetID, quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.Hub.NotifyStockChange(caller.Email, asset.ID.Hex(), asset.Name, asset.Quantity)
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

type assetUpdateRequest struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Quantity interface{} `json:"quantity"`
}

func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	assetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req assetUpdateRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quantity, err := utils.CoerceQuantity(req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	asset, err := h.Inventory.Update(ctx, caller, assetID, req.Name, req.Type, quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, asset)
}

func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	assetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.Inventory.Remove(ctx, caller, assetID); err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	query := r.URL.Query()

	threshold, _ := strconv.ParseInt(query.Get("threshold"), 10, 64)
	limit, _ := strconv.ParseInt(query.Get("limit"), 10, 64)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	assets, err := h.Inventory.LowStock(ctx, caller, threshold, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, assets)
}
