package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfillment lifecycle state of an order. It starts at
// StatusPending and is mutated later by external fulfillment processes;
// this service only reads it back.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// DisplayStatus returns a human-readable label for a status value. Legacy
// documents may carry values outside the known set; those are echoed back
// unchanged so a lookup never fails on an unrecognized status.
func DisplayStatus(s OrderStatus) string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusProcessing:
		return "Processing"
	case StatusShipped:
		return "Shipped"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// PaymentStatus is the payment lifecycle state, independent of the
// fulfillment status.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCompleted PaymentStatus = "completed"
)

// ValidPaymentStatus reports whether s is one of the accepted payment
// lifecycle values.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentCompleted:
		return true
	}
	return false
}

// OrderProduct is a single line item: a weak reference into the product
// catalog plus the quantity and unit price captured at checkout time.
type OrderProduct struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

// CustomerInfo captures the contact details submitted at checkout. Optional
// fields are always stored as empty strings, never omitted.
type CustomerInfo struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
}

// ShippingInfo is the destination block derived from the checkout payload.
type ShippingInfo struct {
	Country    string `bson:"country" json:"country"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	City       string `bson:"city" json:"city"`
	Address    string `bson:"address" json:"address"`
}

// Order defines the persisted order document. TrackingNumber and
// OrderNumber are each covered by a unique index; the stored layout is part
// of the external contract the admin dashboard and tracking page read.
type Order struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User           *primitive.ObjectID `bson:"user,omitempty" json:"user"`
	Products       []OrderProduct      `bson:"products" json:"products"`
	TotalPrice     float64             `bson:"totalPrice" json:"totalPrice"`
	Status         OrderStatus         `bson:"status" json:"status"`
	PaymentStatus  PaymentStatus       `bson:"paymentStatus" json:"paymentStatus"`
	PhoneNo        string              `bson:"phoneNo" json:"phoneNo"`
	Address        string              `bson:"address" json:"address"`
	CustomerInfo   CustomerInfo        `bson:"customerInfo" json:"customerInfo"`
	ShippingInfo   *ShippingInfo       `bson:"shippingInfo,omitempty" json:"shippingInfo"`
	TrackingNumber string              `bson:"trackingNumber" json:"trackingNumber"`
	OrderNumber    string              `bson:"orderNumber" json:"orderNumber"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
}
