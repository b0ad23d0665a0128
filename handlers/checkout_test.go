package handlers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
)

func TestUnitAmountCents(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  int64
	}{
		{"whole dollars", 100.00, 10000},
		{"cents", 19.99, 1999},
		{"rounds up above half", 10.006, 1001},
		{"rounds down below half", 10.004, 1000},
		{"free", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnitAmountCents(tt.price))
		})
	}
}

func TestCartTotalCents(t *testing.T) {
	tests := []struct {
		name     string
		products []CheckoutProduct
		want     int64
	}{
		{
			name:     "single item",
			products: []CheckoutProduct{{Price: 100.00, Quantity: 2}},
			want:     20000,
		},
		{
			name: "mixed cart",
			products: []CheckoutProduct{
				{Price: 19.99, Quantity: 3},
				{Price: 5.50, Quantity: 1},
			},
			want: 3*1999 + 550,
		},
		{
			name:     "missing quantity counts as one",
			products: []CheckoutProduct{{Price: 42.00}},
			want:     4200,
		},
		{
			name: "per item rounding before multiplication",
			// 33.336 rounds to 3334 cents first, then times three.
			products: []CheckoutProduct{{Price: 33.336, Quantity: 3}},
			want:     3 * 3334,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CartTotalCents(tt.products))
		})
	}
}

func TestApplyDiscountCents(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		discount int64
		want     int64
	}{
		{"ten percent off 200 dollars", 20000, 10, 18000},
		{"rounds discount half up", 1005, 10, 1005 - 101},
		{"full discount", 5000, 100, 0},
		{"zero discount", 5000, 0, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyDiscountCents(tt.total, tt.discount))
		})
	}
}

func TestCentsToDollars(t *testing.T) {
	assert.Equal(t, 200.00, CentsToDollars(20000))
	assert.Equal(t, 45.00, CentsToDollars(4500))
	assert.Equal(t, 0.01, CentsToDollars(1))
}

// Mirrors the full reward scenario: a $200 cart crosses the reward threshold,
// and the issued 10% coupon turns a later $50 cart into $45.
func TestRewardScenarioMath(t *testing.T) {
	firstCart := []CheckoutProduct{{Price: 100.00, Quantity: 2}}
	firstTotal := CartTotalCents(firstCart)
	assert.Equal(t, int64(20000), firstTotal)
	assert.GreaterOrEqual(t, firstTotal, int64(rewardThresholdCents))

	secondCart := []CheckoutProduct{{Price: 50.00, Quantity: 1}}
	secondTotal := ApplyDiscountCents(CartTotalCents(secondCart), rewardDiscountPct)
	assert.Equal(t, int64(4500), secondTotal)
	assert.Equal(t, 45.00, CentsToDollars(secondTotal))
}

func TestNewRewardCouponCode(t *testing.T) {
	pattern := regexp.MustCompile(`^GIFT[A-Z0-9]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := NewRewardCouponCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}

	// 50 draws from a 36^6 space colliding down to a handful would mean the
	// generator is broken.
	assert.Greater(t, len(seen), 45)
}

func TestCartMetadataRoundTrip(t *testing.T) {
	products := []CheckoutProduct{
		{ID: "64a000000000000000000001", Name: "Desk Lamp", Price: 39.99, Quantity: 2},
		{ID: "64a000000000000000000002", Name: "Notebook", Price: 4.50},
	}

	encoded, err := encodeCartMetadata(products)
	require.NoError(t, err)

	items, err := decodeCartMetadata(encoded)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "64a000000000000000000001", items[0].ID)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, 39.99, items[0].Price)

	// Missing quantity is normalized to one at encode time.
	assert.Equal(t, int64(1), items[1].Quantity)
}

func TestShippingAddressMetadataRoundTrip(t *testing.T) {
	address := &models.ShippingAddress{
		Street:     "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
		Phone:      "555-0100",
		IsDefault:  true,
	}

	encoded, err := encodeShippingAddress(address)
	require.NoError(t, err)

	decoded, err := decodeShippingAddress(encoded)
	require.NoError(t, err)
	assert.Equal(t, address, decoded)
}

func TestShippingAddressMetadataEmpty(t *testing.T) {
	encoded, err := encodeShippingAddress(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", encoded)

	decoded, err := decodeShippingAddress(encoded)
	require.NoError(t, err)
	assert.Nil(t, decoded)
}
