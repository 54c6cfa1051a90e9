package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
)

func newAdminRouter(orders *fakeOrderStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logger := zap.NewNop()
	r.POST("/admin/login", AdminLogin(orders, testJWTSecret, 20*time.Minute, logger))
	r.GET("/admin/api/orders", ListOrders(orders, logger))
	r.DELETE("/admin/api/orders/:id", DeleteOrder(orders, logger))
	return r
}

func seedOrder(t *testing.T, orders *fakeOrderStore, status models.OrderStatus, createdAt time.Time, n int) models.Order {
	t.Helper()
	order := &models.Order{
		Products:       []models.OrderProduct{{Product: primitive.NewObjectID(), Quantity: 1, Price: 1}},
		TotalPrice:     1,
		Status:         status,
		PaymentStatus:  models.PaymentPending,
		TrackingNumber: fmt.Sprintf("TRK%08dAAAA", n),
		OrderNumber:    fmt.Sprintf("ORD%08d", n),
		CreatedAt:      createdAt,
	}
	id, err := orders.Insert(context.Background(), order)
	require.NoError(t, err)
	order.ID = id
	return *order
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	orders := newFakeOrderStore()
	r := newAdminRouter(orders)

	base := time.Now()
	seedOrder(t, orders, models.StatusPending, base, 1)
	seedOrder(t, orders, models.StatusShipped, base.Add(time.Minute), 2)
	seedOrder(t, orders, models.StatusShipped, base.Add(2*time.Minute), 3)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/orders?status=shipped", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 2.0, body["total"])

	data := body["data"].([]any)
	require.Len(t, data, 2)
	// Newest first.
	first := data[0].(map[string]any)
	second := data[1].(map[string]any)
	assert.Equal(t, "ORD00000003", first["orderNumber"])
	assert.Equal(t, "ORD00000002", second["orderNumber"])
}

func TestListOrdersPaginates(t *testing.T) {
	orders := newFakeOrderStore()
	r := newAdminRouter(orders)

	base := time.Now()
	for i := 0; i < 5; i++ {
		seedOrder(t, orders, models.StatusPending, base.Add(time.Duration(i)*time.Minute), i+10)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/orders?page=2&limit=2", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, 5.0, body["total"])
	assert.Equal(t, 2.0, body["page"])
	data := body["data"].([]any)
	assert.Len(t, data, 2)
}

func TestListOrdersRejectsBadPagination(t *testing.T) {
	orders := newFakeOrderStore()
	r := newAdminRouter(orders)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/orders?page=0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteOrder(t *testing.T) {
	orders := newFakeOrderStore()
	r := newAdminRouter(orders)

	order := seedOrder(t, orders, models.StatusPending, time.Now(), 7)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/api/orders/"+order.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, orders.count())

	// Deleting again is a miss.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/api/orders/"+order.ID.Hex(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Malformed ids are a client error.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/api/orders/not-an-id", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminLogin(t *testing.T) {
	orders := newFakeOrderStore()
	r := newAdminRouter(orders)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	orders.admins["ops@x.com"] = models.Customer{
		ID:           primitive.NewObjectID(),
		Email:        "ops@x.com",
		PasswordHash: string(hash),
		Role:         "admin",
	}

	w := postJSON(r, "/admin/login", map[string]any{"email": "Ops@X.com", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])

	tokenString, _ := body["token"].(string)
	require.NotEmpty(t, tokenString)

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin", claims["role"])

	// Wrong password and unknown account are indistinguishable.
	w = postJSON(r, "/admin/login", map[string]any{"email": "ops@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = postJSON(r, "/admin/login", map[string]any{"email": "nobody@x.com", "password": "s3cret"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
