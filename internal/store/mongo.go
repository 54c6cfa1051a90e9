package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// MongoStore implements OrderStore on top of a MongoDB database.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	res, err := s.db.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, fmt.Errorf("insert order: %w", ErrDuplicate)
		}
		return primitive.NilObjectID, fmt.Errorf("insert order: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert order: unexpected id type %T", res.InsertedID)
	}
	return id, nil
}

func (s *MongoStore) FindByTracking(ctx context.Context, trackingNumber string) (*TrackedOrder, error) {
	var order models.Order
	err := s.db.Collection("orders").FindOne(ctx, bson.M{"trackingNumber": trackingNumber}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	tracked := &TrackedOrder{Order: order}
	tracked.Products = s.resolveProducts(ctx, order.Products)

	if order.User != nil {
		var user models.User
		err := s.db.Collection("users").FindOne(ctx, bson.M{"_id": *order.User}).Decode(&user)
		if err == nil {
			tracked.User = &user
		}
	}

	return tracked, nil
}

// resolveProducts joins line items against the catalog. A reference that no
// longer resolves yields a line item with a nil product rather than failing
// the whole lookup.
func (s *MongoStore) resolveProducts(ctx context.Context, items []models.OrderProduct) []TrackedProduct {
	resolved := make([]TrackedProduct, 0, len(items))
	if len(items) == 0 {
		return resolved
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Product)
	}

	byID := make(map[primitive.ObjectID]models.Product, len(ids))
	cursor, err := s.db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err == nil {
		var products []models.Product
		if err := cursor.All(ctx, &products); err == nil {
			for _, p := range products {
				byID[p.ID] = p
			}
		}
	}

	for _, item := range items {
		entry := TrackedProduct{Quantity: item.Quantity, Price: item.Price}
		if p, ok := byID[item.Product]; ok {
			product := p
			entry.Product = &product
		}
		resolved = append(resolved, entry)
	}
	return resolved
}

func (s *MongoStore) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	collection := s.db.Collection("orders")

	total, err := collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}
	return orders, total, nil
}

func (s *MongoStore) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) error {
	res, err := s.db.Collection("orders").UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"paymentStatus": status},
	})
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection("orders").DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) FindAdminByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var admin models.Customer
	err := s.db.Collection("customers").FindOne(ctx, bson.M{
		"email": email,
		"role":  "admin",
	}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}
