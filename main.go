package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v76"

	"github.com/sabbirsolid/asset-management-system-server/config"
	"github.com/sabbirsolid/asset-management-system-server/database"
	"github.com/sabbirsolid/asset-management-system-server/directory"
	"github.com/sabbirsolid/asset-management-system-server/handlers"
	"github.com/sabbirsolid/asset-management-system-server/inventory"
	"github.com/sabbirsolid/asset-management-system-server/lifecycle"
	"github.com/sabbirsolid/asset-management-system-server/middleware"
	"github.com/sabbirsolid/asset-management-system-server/routes"
	"github.com/sabbirsolid/asset-management-system-server/store/mongostore"
	"github.com/sabbirsolid/asset-management-system-server/utils"
	"github.com/sabbirsolid/asset-management-system-server/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it")
	}
	cfg := config.Load()

	ctx := context.Background()
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := client.Database(cfg.DBName)

	if err := mongostore.EnsureUserIndexes(ctx, db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := mongostore.EnsureAssetIndexes(ctx, db); err != nil {
		log.Printf("asset index warning: %v", err)
	}

	stripe.Key = cfg.StripeKey

	users := mongostore.NewUsers(db)
	assets := mongostore.NewAssets(db)
	requests := mongostore.NewRequests(db)

	tokens := utils.NewTokenIssuer(cfg.JWTKey, cfg.JWTExpiration)
	hub := websocket.NewHub()
	go hub.Run()

	h := &handlers.Handler{
		Directory: directory.New(users),
		Inventory: inventory.New(assets, requests),
		Lifecycle: lifecycle.New(requests, assets),
		Users:     users,
		Tokens:    tokens,
		Hub:       hub,
		Notices:   db.Collection("notices"),
		Payments:  db.Collection("payments"),
		Mongo:     client,
	}

	router := mux.NewRouter()
	routes.Register(router, h, tokens, users)

	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Asset management server running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	database.Disconnect(client)
	log.Println("Server stopped gracefully")
}
