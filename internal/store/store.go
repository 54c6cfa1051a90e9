package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("order not found")

	// ErrDuplicate is returned when an insert is rejected by one of the
	// unique identifier indexes. Callers regenerate identifiers and retry.
	ErrDuplicate = errors.New("duplicate identifier")
)

// TrackedProduct is one order line item enriched with catalog data. Product
// is nil when the referenced catalog entry no longer resolves; the lookup
// still succeeds with a partially-filled line item.
type TrackedProduct struct {
	Product  *models.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Price    float64         `json:"price"`
}

// TrackedOrder is the stored order together with its resolved catalog and
// user references, as needed by the tracking projection.
type TrackedOrder struct {
	Order    models.Order
	Products []TrackedProduct
	User     *models.User
}

// ListFilter narrows and pages the operator order listing.
type ListFilter struct {
	Status models.OrderStatus
	Page   int64
	Limit  int64
}

// OrderStore is the persistence boundary for orders. It is constructed
// explicitly at startup and injected into the handlers; uniqueness of the
// public identifiers is enforced here, not by the callers.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	FindByTracking(ctx context.Context, trackingNumber string) (*TrackedOrder, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindAdminByEmail(ctx context.Context, email string) (*models.Customer, error)
}
