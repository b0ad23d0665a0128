package handlers

import (
	"crypto/rand"
	"encoding/json"
	"math"
	"math/big"

	"storefront/models"
)

const (
	// rewardThresholdCents is the final total, in cents, at or above which a
	// reward coupon is issued.
	rewardThresholdCents = 20000
	rewardDiscountPct    = 10
	rewardValidDays      = 30

	rewardCodePrefix = "GIFT"
	rewardCodeLength = 6
)

// CheckoutProduct is one cart row as submitted by the client. The price here
// is what gets snapshotted onto the order, later catalog changes do not
// affect placed orders.
type CheckoutProduct struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int64   `json:"quantity"`
}

// cartItemMetadata is the per-item snapshot serialized into the provider
// session metadata, the only durable record of intent until payment confirms.
type cartItemMetadata struct {
	ID       string  `json:"id"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// UnitAmountCents converts a dollar price to integer cents, rounding half
// away from zero. All money math past this point is integer arithmetic.
func UnitAmountCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// CartTotalCents sums round(price*100) * quantity over the cart. A missing
// quantity counts as one, matching what the storefront sends for single
// items.
func CartTotalCents(products []CheckoutProduct) int64 {
	var total int64
	for _, product := range products {
		quantity := product.Quantity
		if quantity < 1 {
			quantity = 1
		}
		total += UnitAmountCents(product.Price) * quantity
	}
	return total
}

// ApplyDiscountCents subtracts a percentage discount from a cents total,
// rounding the discount the same way the total was rounded.
func ApplyDiscountCents(totalCents int64, discountPercentage int64) int64 {
	discount := int64(math.Round(float64(totalCents) * float64(discountPercentage) / 100))
	return totalCents - discount
}

// CentsToDollars converts an integer cents amount to the dollar value stored
// on orders and shown to users.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

func encodeCartMetadata(products []CheckoutProduct) (string, error) {
	items := make([]cartItemMetadata, 0, len(products))
	for _, product := range products {
		quantity := product.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, cartItemMetadata{
			ID:       product.ID,
			Quantity: quantity,
			Price:    product.Price,
		})
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeCartMetadata(encoded string) ([]cartItemMetadata, error) {
	var items []cartItemMetadata
	if err := json.Unmarshal([]byte(encoded), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func encodeShippingAddress(address *models.ShippingAddress) (string, error) {
	if address == nil {
		return "{}", nil
	}
	encoded, err := json.Marshal(address)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeShippingAddress(encoded string) (*models.ShippingAddress, error) {
	if encoded == "" || encoded == "{}" {
		return nil, nil
	}
	var address models.ShippingAddress
	if err := json.Unmarshal([]byte(encoded), &address); err != nil {
		return nil, err
	}
	return &address, nil
}

const rewardCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRewardCouponCode returns a fresh reward code: the fixed prefix followed
// by six random uppercase alphanumerics.
func NewRewardCouponCode() (string, error) {
	code := make([]byte, rewardCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(rewardCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = rewardCodeAlphabet[n.Int64()]
	}
	return rewardCodePrefix + string(code), nil
}
