package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
	"go.uber.org/zap"
)

type stubSessionAPI struct {
	params  *stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
	err     error
}

func (s *stubSessionAPI) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.params = params
	return s.session, s.err
}

func TestNewStripeProviderRequiresAPIKey(t *testing.T) {
	_, err := NewStripeProvider("  ", zap.NewNop())
	assert.Error(t, err)
}

func TestCreateCheckoutSessionBuildsLineItems(t *testing.T) {
	api := &stubSessionAPI{
		session: &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"},
	}
	provider := newStripeProviderWithSessions(api, zap.NewNop())

	session, err := provider.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{
		Items: []CheckoutItem{
			{Name: "Widget", Image: "/widget.png", Price: 12.5, Quantity: 2},
			{Name: "Gadget", Price: 3, Quantity: 0},
		},
		Currency:   "USD",
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
		OrderID:    "abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_1", session.URL)

	params := api.params
	require.NotNil(t, params)
	assert.Equal(t, string(stripe.CheckoutSessionModePayment), *params.Mode)
	assert.Equal(t, "https://shop.example/success", *params.SuccessURL)
	assert.Equal(t, "https://shop.example/cancel", *params.CancelURL)
	assert.Equal(t, "abc123", params.Metadata["orderId"])

	require.Len(t, params.LineItems, 2)

	first := params.LineItems[0]
	assert.Equal(t, int64(2), *first.Quantity)
	assert.Equal(t, "usd", *first.PriceData.Currency)
	// 12.50 major units become 1250 cents.
	assert.Equal(t, int64(1250), *first.PriceData.UnitAmount)
	assert.Equal(t, "Widget", *first.PriceData.ProductData.Name)
	require.Len(t, first.PriceData.ProductData.Images, 1)
	assert.Equal(t, "/widget.png", *first.PriceData.ProductData.Images[0])

	second := params.LineItems[1]
	assert.Equal(t, int64(1), *second.Quantity, "quantity is clamped to at least 1")
	assert.Equal(t, int64(300), *second.PriceData.UnitAmount)
	assert.Nil(t, second.PriceData.ProductData.Images)
}

func TestCreateCheckoutSessionDefaultsCurrency(t *testing.T) {
	api := &stubSessionAPI{session: &stripe.CheckoutSession{ID: "cs_2"}}
	provider := newStripeProviderWithSessions(api, zap.NewNop())

	_, err := provider.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{
		Items:      []CheckoutItem{{Name: "Widget", Price: 1, Quantity: 1}},
		SuccessURL: "https://shop.example/s",
		CancelURL:  "https://shop.example/c",
	})
	require.NoError(t, err)
	assert.Equal(t, "usd", *api.params.LineItems[0].PriceData.Currency)
}

func TestCreateCheckoutSessionRejectsEmptyItems(t *testing.T) {
	provider := newStripeProviderWithSessions(&stubSessionAPI{}, zap.NewNop())
	_, err := provider.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{})
	assert.Error(t, err)
}

func TestCreateCheckoutSessionWrapsAPIError(t *testing.T) {
	api := &stubSessionAPI{err: errors.New("rate limited")}
	provider := newStripeProviderWithSessions(api, zap.NewNop())

	_, err := provider.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{
		Items:      []CheckoutItem{{Name: "Widget", Price: 1, Quantity: 1}},
		SuccessURL: "https://shop.example/s",
		CancelURL:  "https://shop.example/c",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create checkout session")
}
