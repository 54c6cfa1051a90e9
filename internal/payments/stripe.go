package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"
)

type sessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// CheckoutItem is one purchasable line presented to the payment processor.
// Price is in major currency units; conversion to cents happens here.
type CheckoutItem struct {
	Name     string
	Image    string
	Price    float64
	Quantity int64
}

// CheckoutSessionRequest describes a hosted checkout session to create.
type CheckoutSessionRequest struct {
	Items      []CheckoutItem
	Currency   string
	SuccessURL string
	CancelURL  string
	OrderID    string
}

// CheckoutSession is the subset of the created session the frontend needs
// to redirect the customer.
type CheckoutSession struct {
	ID  string
	URL string
}

// StripeProvider creates hosted checkout sessions through the Stripe API.
type StripeProvider struct {
	sessions sessionAPI
	logger   *zap.Logger
}

// NewStripeProvider constructs a provider from the secret API key.
func NewStripeProvider(apiKey string, logger *zap.Logger) (*StripeProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("stripe: api key is required")
	}
	sc := client.New(apiKey, nil)
	return &StripeProvider{sessions: sc.CheckoutSessions, logger: logger}, nil
}

func newStripeProviderWithSessions(sessions sessionAPI, logger *zap.Logger) *StripeProvider {
	return &StripeProvider{sessions: sessions, logger: logger}
}

// CreateCheckoutSession creates a card-payment checkout session with one
// price_data line per item, amounts converted to the smallest currency unit.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error) {
	if len(req.Items) == 0 {
		return CheckoutSession{}, errors.New("stripe: no items provided")
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx

	if req.OrderID != "" {
		params.Metadata = map[string]string{"orderId": req.OrderID}
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Image != "" {
			productData.Images = stripe.StringSlice([]string{item.Image})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(int64(math.Round(item.Price * 100))),
				ProductData: productData,
			},
		})
	}
	params.LineItems = lineItems

	session, err := p.sessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	p.logger.Info("checkout session created",
		zap.String("sessionId", session.ID),
		zap.String("currency", currency),
		zap.Int("items", len(req.Items)),
	)

	return CheckoutSession{ID: session.ID, URL: session.URL}, nil
}
