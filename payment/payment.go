package payment

import "context"

// PaymentStatusPaid is the provider-side status of a captured payment.
const PaymentStatusPaid = "paid"

// LineItem is one cart row as the provider expects it, with the unit amount
// already converted to integer minor units.
type LineItem struct {
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
}

type SessionParams struct {
	LineItems []LineItem
	// DiscountPercentage > 0 attaches a single-use percent-off coupon
	// resource to the session.
	DiscountPercentage int64
	SuccessURL         string
	CancelURL          string
	// Metadata is the only durable record of checkout intent until the
	// provider confirms payment, no local order exists before that.
	Metadata map[string]string
}

type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	// AmountTotal is the captured amount in minor units, authoritative over
	// any locally computed total.
	AmountTotal int64
	Metadata    map[string]string
}

// Provider is the payment gateway the checkout flow talks to. Handlers take
// it as a constructor-injected dependency so tests can run against a stub.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*Session, error)
}
