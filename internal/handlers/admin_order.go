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

// ListOrders returns the operator view: newest first, optionally filtered
// by exact fulfillment status, paginated.
func ListOrders(orders store.OrderStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, "invalid pagination params")
			return
		}

		filter := store.ListFilter{
			Status: models.OrderStatus(strings.TrimSpace(c.Query("status"))),
			Page:   page,
			Limit:  limit,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		results, total, err := orders.List(ctx, filter)
		if err != nil {
			logger.Error("order listing failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "failed to fetch orders")
			return
		}

		if results == nil {
			results = []models.Order{}
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    results,
			"total":   total,
			"page":    page,
			"limit":   limit,
		})
	}
}

func DeleteOrder(orders store.OrderStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = orders.Delete(ctx, orderID)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			logger.Error("order delete failed", zap.String("orderId", orderID.Hex()), zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "failed to delete order")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "order deleted"})
	}
}
