package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is the slice of the external identity record joined into a tracking
// lookup. Orders hold at most a weak reference to it.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email string             `bson:"email" json:"email"`
}
