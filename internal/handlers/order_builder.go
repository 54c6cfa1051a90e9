package handlers

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type orderItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type orderCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type createOrderRequest struct {
	Items         []orderItemRequest   `json:"items"`
	TotalAmount   float64              `json:"totalAmount"`
	CustomerInfo  orderCustomerRequest `json:"customerInfo"`
	PaymentStatus string               `json:"paymentStatus"`
	UserID        string               `json:"userId"`
}

/* =========================
   VALIDATION
========================= */

// validationError reports rejected caller input, with per-field messages
// suitable for the errors map in the response envelope.
type validationError struct {
	message string
	fields  map[string]string
}

func (e *validationError) Error() string {
	return e.message
}

/* =========================
   BUILD ORDER
========================= */

// buildOrderFromRequest validates and normalizes a raw checkout payload
// into a persistable order. Strict policy: empty items and missing customer
// name or email are rejected; optional customer fields are stored as empty
// strings, never omitted.
func buildOrderFromRequest(req createOrderRequest, user *primitive.ObjectID, now time.Time) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, &validationError{
			message: "no items provided",
			fields:  map[string]string{"items": "at least one item is required"},
		}
	}

	name := strings.TrimSpace(req.CustomerInfo.Name)
	email := strings.TrimSpace(req.CustomerInfo.Email)
	if name == "" || email == "" {
		fields := map[string]string{}
		if name == "" {
			fields["customerInfo.name"] = "name is required"
		}
		if email == "" {
			fields["customerInfo.email"] = "email is required"
		}
		return nil, &validationError{message: "customer name/email required", fields: fields}
	}

	products := make([]models.OrderProduct, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, &validationError{
				message: "invalid productId",
				fields:  map[string]string{"items.productId": "must be a valid product reference"},
			}
		}
		if item.Quantity <= 0 {
			return nil, &validationError{
				message: "quantity must be greater than zero",
				fields:  map[string]string{"items.quantity": "must be greater than zero"},
			}
		}
		products = append(products, models.OrderProduct{
			Product:  productID,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
		})
	}

	paymentStatus := models.PaymentStatus(strings.TrimSpace(req.PaymentStatus))
	if paymentStatus == "" {
		paymentStatus = models.PaymentPending
	}
	if !models.ValidPaymentStatus(paymentStatus) {
		return nil, &validationError{
			message: "invalid payment status",
			fields:  map[string]string{"paymentStatus": "must be one of pending, paid, failed, completed"},
		}
	}

	customer := models.CustomerInfo{
		Name:    name,
		Email:   email,
		Phone:   strings.TrimSpace(req.CustomerInfo.Phone),
		Address: strings.TrimSpace(req.CustomerInfo.Address),
		City:    strings.TrimSpace(req.CustomerInfo.City),
		State:   strings.TrimSpace(req.CustomerInfo.State),
		ZipCode: strings.TrimSpace(req.CustomerInfo.ZipCode),
	}

	country := strings.TrimSpace(req.CustomerInfo.Country)
	if country == "" {
		country = "Unknown"
	}

	trackingNumber, orderNumber := newOrderIdentifiers(now)

	order := &models.Order{
		User:          user,
		Products:      products,
		TotalPrice:    req.TotalAmount,
		Status:        models.StatusPending,
		PaymentStatus: paymentStatus,
		PhoneNo:       customer.Phone,
		Address:       joinAddressParts(customer.Address, customer.City, customer.State, customer.ZipCode),
		CustomerInfo:  customer,
		ShippingInfo: &models.ShippingInfo{
			Country:    country,
			PostalCode: customer.ZipCode,
			City:       customer.City,
			Address:    customer.Address,
		},
		TrackingNumber: trackingNumber,
		OrderNumber:    orderNumber,
		CreatedAt:      now,
	}

	return order, nil
}

// joinAddressParts flattens address components into a single comma-joined
// string, skipping empty parts so no double or dangling separators appear.
func joinAddressParts(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, ", ")
}

/* =========================
   IDENTIFIERS
========================= */

const trackingRandomAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newOrderIdentifiers derives the public identifiers from the current time:
// the last 8 digits of the Unix millisecond timestamp, plus 4 random
// upper-case base36 characters for the tracking number. Collisions are
// possible under load; the unique indexes and the insert retry own
// correctness, this is only a low-probability first draw.
func newOrderIdentifiers(now time.Time) (trackingNumber, orderNumber string) {
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	timestampPart := millis
	if len(millis) > 8 {
		timestampPart = millis[len(millis)-8:]
	}

	random := make([]byte, 4)
	for i := range random {
		random[i] = trackingRandomAlphabet[rand.Intn(len(trackingRandomAlphabet))]
	}

	return "TRK" + timestampPart + string(random), "ORD" + timestampPart
}

/* =========================
   USER REFERENCE
========================= */

// userRefFromRequest resolves the optional user reference: a valid bearer
// token wins, then an explicit userId in the payload. Anything invalid is
// ignored so guest checkout never fails on a stale token or a bad id.
func userRefFromRequest(authHeader, bodyUserID, secret string) *primitive.ObjectID {
	if id := userIDFromToken(authHeader, secret); id != nil {
		return id
	}
	if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(bodyUserID)); err == nil {
		return &id
	}
	return nil
}

func userIDFromToken(header, secret string) *primitive.ObjectID {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	userIDValue, _ := claims["userId"].(string)
	userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(userIDValue))
	if err != nil {
		return nil
	}
	return &userID
}
