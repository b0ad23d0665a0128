package payment

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider implements Provider against the Stripe Checkout API.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.LineItems))
	for _, item := range params.LineItems {
		priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(string(stripe.CurrencyUSD)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(item.Name),
			},
			UnitAmount: stripe.Int64(item.UnitAmount),
		}
		if item.Image != "" {
			priceData.ProductData.Images = stripe.StringSlice([]string{item.Image})
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: priceData,
			Quantity:  stripe.Int64(item.Quantity),
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(params.SuccessURL),
		CancelURL:          stripe.String(params.CancelURL),
	}
	sessionParams.Context = ctx

	if params.DiscountPercentage > 0 {
		couponID, err := s.createCoupon(ctx, params.DiscountPercentage)
		if err != nil {
			return nil, err
		}
		sessionParams.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(couponID)},
		}
	}

	for key, value := range params.Metadata {
		sessionParams.AddMetadata(key, value)
	}

	session, err := s.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:            session.ID,
		URL:           session.URL,
		PaymentStatus: string(session.PaymentStatus),
		AmountTotal:   session.AmountTotal,
		Metadata:      session.Metadata,
	}, nil
}

func (s *StripeProvider) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*Session, error) {
	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx

	session, err := s.api.CheckoutSessions.Get(sessionID, getParams)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:            session.ID,
		URL:           session.URL,
		PaymentStatus: string(session.PaymentStatus),
		AmountTotal:   session.AmountTotal,
		Metadata:      session.Metadata,
	}, nil
}

// createCoupon makes a single-use percent-off coupon resource on the
// provider side, the discount itself is applied by Stripe at capture time.
func (s *StripeProvider) createCoupon(ctx context.Context, percentOff int64) (string, error) {
	couponParams := &stripe.CouponParams{
		PercentOff: stripe.Float64(float64(percentOff)),
		Duration:   stripe.String(string(stripe.CouponDurationOnce)),
	}
	couponParams.Context = ctx

	coupon, err := s.api.Coupons.New(couponParams)
	if err != nil {
		return "", err
	}
	return coupon.ID, nil
}
