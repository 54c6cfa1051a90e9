package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/store"
)

const maxWebhookBodyBytes = 65536

// CheckoutProvider creates hosted payment sessions with the processor.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error)
}

type checkoutItemRequest struct {
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

type checkoutSessionRequest struct {
	Items      []checkoutItemRequest `json:"items"`
	SuccessURL string                `json:"successUrl"`
	CancelURL  string                `json:"cancelUrl"`
	OrderID    string                `json:"orderId"`
}

// CreateCheckoutSession starts a hosted checkout for the given items and
// returns the session id and redirect URL.
func CreateCheckoutSession(provider CheckoutProvider, currency string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment/checkout-session"
		defer handlePanic(c, logger, route)

		var req checkoutSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		if len(req.Items) == 0 {
			respondWithError(c, http.StatusBadRequest, "Invalid items")
			return
		}
		if req.SuccessURL == "" || req.CancelURL == "" {
			respondWithError(c, http.StatusBadRequest, "Success and cancel URLs are required")
			return
		}

		items := make([]payments.CheckoutItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, payments.CheckoutItem{
				Name:     item.Name,
				Image:    item.Image,
				Price:    item.Price,
				Quantity: item.Quantity,
			})
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		session, err := provider.CreateCheckoutSession(ctx, payments.CheckoutSessionRequest{
			Items:      items,
			Currency:   currency,
			SuccessURL: req.SuccessURL,
			CancelURL:  req.CancelURL,
			OrderID:    req.OrderID,
		})
		if err != nil {
			logger.Error("checkout session failed", zap.String("route", route), zap.Error(err))
			respondWithError(c, http.StatusBadGateway, "Failed to create checkout session")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sessionId": session.ID,
			"url":       session.URL,
		})
	}
}

// StripeWebhook consumes signed processor events. A verified
// checkout.session.completed updates the order's payment status server-side
// through the session's order metadata, so clients never assert "paid"
// themselves.
func StripeWebhook(orders store.OrderStore, webhookSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment/webhook"
		defer handlePanic(c, logger, route)

		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, "invalid payload")
			return
		}

		event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), webhookSecret)
		if err != nil {
			logger.Warn("webhook signature rejected", zap.Error(err))
			respondWithError(c, http.StatusBadRequest, "invalid signature")
			return
		}

		if event.Type != "checkout.session.completed" {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			logger.Warn("webhook event decode failed", zap.String("eventId", event.ID), zap.Error(err))
			respondWithError(c, http.StatusBadRequest, "invalid event payload")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(session.Metadata["orderId"])
		if err != nil {
			// Sessions created outside the order flow carry no order
			// metadata; acknowledge so the processor stops retrying.
			logger.Warn("webhook without order metadata", zap.String("eventId", event.ID))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		status := models.PaymentPaid
		if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			status = models.PaymentPending
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = orders.UpdatePaymentStatus(ctx, orderID, status)
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("webhook for unknown order", zap.String("orderId", orderID.Hex()))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if err != nil {
			logger.Error("payment status update failed", zap.String("orderId", orderID.Hex()), zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "failed to process event")
			return
		}

		logger.Info("payment status updated",
			zap.String("orderId", orderID.Hex()),
			zap.String("paymentStatus", string(status)),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
