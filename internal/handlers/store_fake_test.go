package handlers

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

// fakeOrderStore is an in-memory OrderStore that enforces the same
// uniqueness the real unique indexes do, plus a knob to reject a number of
// inserts as duplicates to exercise the retry path.
type fakeOrderStore struct {
	mu          sync.Mutex
	orders      map[primitive.ObjectID]models.Order
	catalog     map[primitive.ObjectID]models.Product
	users       map[primitive.ObjectID]models.User
	admins      map[string]models.Customer
	failInserts int
	insertCalls int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders:  make(map[primitive.ObjectID]models.Order),
		catalog: make(map[primitive.ObjectID]models.Product),
		users:   make(map[primitive.ObjectID]models.User),
		admins:  make(map[string]models.Customer),
	}
}

func (f *fakeOrderStore) Insert(_ context.Context, order *models.Order) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.insertCalls++
	if f.failInserts > 0 {
		f.failInserts--
		return primitive.NilObjectID, store.ErrDuplicate
	}

	for _, existing := range f.orders {
		if existing.TrackingNumber == order.TrackingNumber || existing.OrderNumber == order.OrderNumber {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}

	stored := *order
	stored.ID = primitive.NewObjectID()
	f.orders[stored.ID] = stored
	return stored.ID, nil
}

func (f *fakeOrderStore) FindByTracking(_ context.Context, trackingNumber string) (*store.TrackedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, order := range f.orders {
		if order.TrackingNumber != trackingNumber {
			continue
		}

		tracked := &store.TrackedOrder{Order: order}
		for _, item := range order.Products {
			entry := store.TrackedProduct{Quantity: item.Quantity, Price: item.Price}
			if p, ok := f.catalog[item.Product]; ok {
				product := p
				entry.Product = &product
			}
			tracked.Products = append(tracked.Products, entry)
		}
		if order.User != nil {
			if u, ok := f.users[*order.User]; ok {
				user := u
				tracked.User = &user
			}
		}
		return tracked, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeOrderStore) List(_ context.Context, filter store.ListFilter) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []models.Order
	for _, order := range f.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		matched = append(matched, order)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	start := (page - 1) * limit
	if start >= total {
		return []models.Order{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeOrderStore) UpdatePaymentStatus(_ context.Context, id primitive.ObjectID, status models.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	order.PaymentStatus = status
	f.orders[id] = order
	return nil
}

func (f *fakeOrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderStore) FindAdminByEmail(_ context.Context, email string) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	admin, ok := f.admins[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &admin, nil
}

func (f *fakeOrderStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}
