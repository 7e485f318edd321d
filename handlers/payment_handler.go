// handlers/payment_handler.go
//
// Payments are an independent collaborator: creating an intent and
// recording a completed payment never touch inventory or seat counts.
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sabbirsolid/asset-management-system-server/middleware"
	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/policy"
	"github.com/sabbirsolid/asset-management-system-server/utils"
)

type paymentIntentRequest struct {
	AmountCents interface{} `json:"amountCents"`
}

func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	if err := policy.Authorize(caller, policy.ActionAdjustSeats, caller.Email); err != nil {
		respondError(w, r, err)
		return
	}

	var req paymentIntentRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := utils.CoerceQuantity(req.AmountCents)
	if err != nil || amount <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "amountCents must be a positive integer")
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("payment intent error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "payment intent creation failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"clientSecret": intent.ClientSecret})
}

type paymentRecordRequest struct {
	PackageName   string      `json:"packageName"`
	Seats         interface{} `json:"seats"`
	AmountCents   interface{} `json:"amountCents"`
	TransactionID string      `json:"transactionId"`
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	if err := policy.Authorize(caller, policy.ActionAdjustSeats, caller.Email); err != nil {
		respondError(w, r, err)
		return
	}

	var req paymentRecordRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	seats, err := utils.CoerceQuantity(req.Seats)
	if err != nil {
		respondError(w, r, err)
		return
	}
	amount, err := utils.CoerceQuantity(req.AmountCents)
	if err != nil {
		respondError(w, r, err)
		return
	}

	payment := models.Payment{
		ID:            primitive.NewObjectID(),
		HREmail:       caller.Email,
		PackageName:   req.PackageName,
		Seats:         seats,
		AmountCents:   amount,
		TransactionID: req.TransactionID,
		PaidAt:        time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Payments.InsertOne(ctx, payment); err != nil {
		log.Printf("payment insert error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, payment)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())
	if err := policy.Authorize(caller, policy.ActionAdjustSeats, caller.Email); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})
	cursor, err := h.Payments.Find(ctx, bson.M{"hrEmail": caller.Email}, opts)
	if err != nil {
		log.Printf("payments Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		log.Printf("payments decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	utils.RespondWithJSON(w, http.StatusOK, payments)
}
