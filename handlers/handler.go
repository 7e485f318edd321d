// handlers/handler.go
package handlers

import (
	"log"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sabbirsolid/asset-management-system-server/apperr"
	"github.com/sabbirsolid/asset-management-system-server/directory"
	"github.com/sabbirsolid/asset-management-system-server/inventory"
	"github.com/sabbirsolid/asset-management-system-server/lifecycle"
	"github.com/sabbirsolid/asset-management-system-server/store"
	"github.com/sabbirsolid/asset-management-system-server/utils"
	"github.com/sabbirsolid/asset-management-system-server/websocket"
)

// Handler bundles the engine services and thin collaborators the HTTP
// layer needs. Everything is injected; handlers own no storage state.
type Handler struct {
	Directory *directory.Service
	Inventory *inventory.Service
	Lifecycle *lifecycle.Service
	Users     store.UserStore
	Tokens    *utils.TokenIssuer
	Hub       *websocket.Hub

	// Pass-through collections, no lifecycle logic behind them.
	Notices  *mongo.Collection
	Payments *mongo.Collection

	Mongo *mongo.Client
}

// respondError translates an engine error into a status code and a
// client-safe message. Internal faults are logged with their cause and
// surfaced generically.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	utils.RespondWithError(w, apperr.HTTPStatus(err), apperr.PublicMessage(err))
}
