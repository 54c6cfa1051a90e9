package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/store"
)

// guestEmailFallback is returned by the tracking projection when the stored
// order carries no customer email.
const guestEmailFallback = "guest@mohan.com"

// maxInsertAttempts bounds the regenerate-and-retry loop on identifier
// collisions before the creation fails as a server error.
const maxInsertAttempts = 3

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(orders store.OrderStore, jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, logger, route)

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		userRef := userRefFromRequest(c.GetHeader("Authorization"), req.UserID, jwtSecret)

		// Validation runs before any store interaction so a rejected
		// payload can never leave a half-written order behind.
		order, err := buildOrderFromRequest(req, userRef, time.Now())
		if err != nil {
			var verr *validationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error":   verr.message,
					"errors":  verr.fields,
				})
				return
			}
			respondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		orderID, err := insertWithRetry(ctx, orders, order)
		if err != nil {
			logger.Error("order insert failed",
				zap.String("route", route),
				zap.String("trackingNumber", order.TrackingNumber),
				zap.Error(err),
			)
			respondWithError(c, http.StatusInternalServerError, "failed to create order")
			return
		}

		logger.Info("order created",
			zap.String("orderId", orderID.Hex()),
			zap.String("orderNumber", order.OrderNumber),
			zap.Bool("guest", userRef == nil),
		)

		c.JSON(http.StatusCreated, gin.H{
			"success":        true,
			"orderId":        orderID.Hex(),
			"trackingNumber": order.TrackingNumber,
			"orderNumber":    order.OrderNumber,
			"message":        "Order created successfully",
		})
	}
}

// insertWithRetry persists the order, regenerating both public identifiers
// whenever the store rejects the insert on a unique index. The store's
// constraint is the authoritative uniqueness guard; generation is advisory.
func insertWithRetry(ctx context.Context, orders store.OrderStore, order *models.Order) (primitive.ObjectID, error) {
	var lastErr error
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		if attempt > 0 {
			// The order number carries no entropy beyond the millisecond
			// timestamp, so let the clock advance before drawing again.
			time.Sleep(time.Millisecond)
			order.TrackingNumber, order.OrderNumber = newOrderIdentifiers(time.Now())
		}

		id, err := orders.Insert(ctx, order)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return primitive.NilObjectID, err
		}
		lastErr = err
	}
	return primitive.NilObjectID, lastErr
}

/* =========================
   TRACK ORDER
========================= */

// orderProjection is the client-safe view of an order returned by the
// tracking lookup. Shipping info and user are null when absent.
type orderProjection struct {
	ID             string                 `json:"id"`
	OrderNumber    string                 `json:"orderNumber"`
	TrackingNumber string                 `json:"trackingNumber"`
	Status         models.OrderStatus     `json:"status"`
	StatusLabel    string                 `json:"statusLabel"`
	PaymentStatus  models.PaymentStatus   `json:"paymentStatus"`
	TotalPrice     float64                `json:"totalPrice"`
	CreatedAt      time.Time              `json:"createdAt"`
	CustomerInfo   models.CustomerInfo    `json:"customerInfo"`
	Products       []store.TrackedProduct `json:"products"`
	ShippingInfo   *models.ShippingInfo   `json:"shippingInfo"`
	Email          string                 `json:"email"`
	User           *models.User           `json:"user"`
}

func TrackOrder(orders store.OrderStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/tracking/:trackingNumber"
		defer handlePanic(c, logger, route)

		// A blank or malformed tracking number is reported exactly like a
		// miss so the response never hints at the identifier scheme.
		trackingNumber := strings.TrimSpace(c.Param("trackingNumber"))
		if trackingNumber == "" {
			respondWithError(c, http.StatusNotFound, "Order not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		tracked, err := orders.FindByTracking(ctx, trackingNumber)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, "Order not found")
			return
		}
		if err != nil {
			logger.Error("order lookup failed", zap.String("route", route), zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "failed to fetch order")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order":   projectTrackedOrder(tracked),
		})
	}
}

func projectTrackedOrder(tracked *store.TrackedOrder) orderProjection {
	order := tracked.Order

	email := order.CustomerInfo.Email
	if email == "" {
		email = guestEmailFallback
	}

	products := tracked.Products
	if products == nil {
		products = []store.TrackedProduct{}
	}

	return orderProjection{
		ID:             order.ID.Hex(),
		OrderNumber:    order.OrderNumber,
		TrackingNumber: order.TrackingNumber,
		Status:         order.Status,
		StatusLabel:    models.DisplayStatus(order.Status),
		PaymentStatus:  order.PaymentStatus,
		TotalPrice:     order.TotalPrice,
		CreatedAt:      order.CreatedAt,
		CustomerInfo:   order.CustomerInfo,
		Products:       products,
		ShippingInfo:   order.ShippingInfo,
		Email:          email,
		User:           tracked.User,
	}
}
