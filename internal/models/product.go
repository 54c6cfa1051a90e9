package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is the slice of the external catalog this service reads when
// enriching order line items. The catalog itself is owned elsewhere.
type Product struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
	Price float64            `bson:"price" json:"price"`
}
