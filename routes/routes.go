package routes

import (
	"github.com/gorilla/mux"

	"github.com/sabbirsolid/asset-management-system-server/handlers"
	"github.com/sabbirsolid/asset-management-system-server/middleware"
	"github.com/sabbirsolid/asset-management-system-server/store"
	"github.com/sabbirsolid/asset-management-system-server/utils"
)

var (
	methodsGet    = []string{"GET", "OPTIONS"}
	methodsPost   = []string{"POST", "OPTIONS"}
	methodsPut    = []string{"PUT", "OPTIONS"}
	methodsPatch  = []string{"PATCH", "OPTIONS"}
	methodsDelete = []string{"DELETE", "OPTIONS"}
)

func Register(r *mux.Router, h *handlers.Handler, tokens *utils.TokenIssuer, users store.UserStore) {
	// ====================
	// PUBLIC
	// ====================
	r.HandleFunc("/health", h.HealthCheck).Methods(methodsGet...)
	r.HandleFunc("/api/auth/token", h.IssueToken).Methods(methodsPost...)

	// First sign-in registration and the public role lookup.
	r.HandleFunc("/api/users", h.Register).Methods(methodsPost...)
	r.HandleFunc("/api/users/roles/{email}", h.ResolveRole).Methods(methodsGet...)

	// Live feed; the token rides in the query string.
	r.HandleFunc("/api/ws", h.ServeWS).Methods("GET")

	// ====================
	// PROTECTED
	// ====================
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(tokens, users))

	// Tenant directory
	api.HandleFunc("/users/unassigned", h.ListUnassigned).Methods(methodsGet...)
	api.HandleFunc("/users/assign", h.AssignMembers).Methods(methodsPost...)
	api.HandleFunc("/users/{id}/assign", h.AssignMember).Methods(methodsPatch...)
	api.HandleFunc("/users/{id}/unassign", h.UnassignMember).Methods(methodsPatch...)
	api.HandleFunc("/users/seats", h.AdjustSeats).Methods(methodsPatch...)
	api.HandleFunc("/users/profile", h.UpdateProfile).Methods(methodsPatch...)

	// Asset inventory
	api.HandleFunc("/assets", h.ListAssets).Methods(methodsGet...)
	api.HandleFunc("/assets", h.StockIn).Methods(methodsPost...)
	api.HandleFunc("/assets/low-stock", h.LowStock).Methods(methodsGet...)
	api.HandleFunc("/assets/{id}", h.UpdateAsset).Methods(methodsPut...)
	api.HandleFunc("/assets/{id}", h.DeleteAsset).Methods(methodsDelete...)
	api.HandleFunc("/assets/{id}/stock-out", h.StockOut).Methods(methodsPost...)
	api.HandleFunc("/assets/{id}/stock-return", h.StockReturn).Methods(methodsPost...)

	// Request lifecycle
	api.HandleFunc("/requests", h.CreateRequest).Methods(methodsPost...)
	api.HandleFunc("/requests", h.TenantRequests).Methods(methodsGet...)
	api.HandleFunc("/requests/my", h.MyRequests).Methods(methodsGet...)
	api.HandleFunc("/requests/top", h.TopRequested).Methods(methodsGet...)
	api.HandleFunc("/requests/status-counts", h.StatusCounts).Methods(methodsGet...)
	api.HandleFunc("/requests/{id}/approve", h.ApproveRequest).Methods(methodsPatch...)
	api.HandleFunc("/requests/{id}/reject", h.RejectRequest).Methods(methodsPatch...)
	api.HandleFunc("/requests/{id}/return", h.ReturnRequest).Methods(methodsPatch...)

	// Notices
	api.HandleFunc("/notices", h.ListNotices).Methods(methodsGet...)
	api.HandleFunc("/notices", h.CreateNotice).Methods(methodsPost...)
	api.HandleFunc("/notices/{id}", h.DeleteNotice).Methods(methodsDelete...)

	// Payments
	api.HandleFunc("/payments/create-intent", h.CreatePaymentIntent).Methods(methodsPost...)
	api.HandleFunc("/payments", h.RecordPayment).Methods(methodsPost...)
	api.HandleFunc("/payments", h.ListPayments).Methods(methodsGet...)
}
