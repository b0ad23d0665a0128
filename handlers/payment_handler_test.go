package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
	"storefront/payment"
)

type stubProvider struct {
	createdParams []payment.SessionParams
	createResult  *payment.Session
	createErr     error

	sessions    map[string]*payment.Session
	retrieveErr error
}

func (s *stubProvider) CreateCheckoutSession(_ context.Context, params payment.SessionParams) (*payment.Session, error) {
	s.createdParams = append(s.createdParams, params)
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.createResult, nil
}

func (s *stubProvider) RetrieveCheckoutSession(_ context.Context, sessionID string) (*payment.Session, error) {
	if s.retrieveErr != nil {
		return nil, s.retrieveErr
	}
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such session")
	}
	return session, nil
}

func newTestContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, recorder
}

func authenticate(c *gin.Context) *models.User {
	user := &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test Shopper",
		Email: "shopper@example.com",
		Role:  models.RoleCustomer,
	}
	c.Set("User", user)
	c.Set("UserID", user.ID)
	c.Set("Role", user.Role)
	return user
}

func TestCreateCheckoutSessionRequiresAuth(t *testing.T) {
	c, recorder := newTestContext(t, `{"products":[{"_id":"x","price":10,"quantity":1}]}`)
	provider := &stubProvider{}

	CreateCheckoutSessionHandler(c, nil, provider, "http://localhost:5173")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, provider.createdParams)
}

func TestCreateCheckoutSessionRejectsEmptyCart(t *testing.T) {
	c, recorder := newTestContext(t, `{"products":[]}`)
	authenticate(c)
	provider := &stubProvider{}

	CreateCheckoutSessionHandler(c, nil, provider, "http://localhost:5173")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, provider.createdParams)
}

func TestCreateCheckoutSessionBuildsProviderSession(t *testing.T) {
	productID := primitive.NewObjectID().Hex()
	body := `{
		"products": [{"_id": "` + productID + `", "name": "Desk Lamp", "image": "lamp.jpg", "price": 39.99, "quantity": 2}],
		"shippingAddress": {"street": "1 Main St", "city": "Springfield", "state": "IL", "postalCode": "62701", "country": "US", "phone": "555-0100"}
	}`
	c, recorder := newTestContext(t, body)
	user := authenticate(c)

	provider := &stubProvider{
		createResult: &payment.Session{
			ID:  "cs_test_123",
			URL: "https://checkout.example.com/cs_test_123",
		},
	}

	CreateCheckoutSessionHandler(c, nil, provider, "http://localhost:5173")

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var response struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "https://checkout.example.com/cs_test_123", response.URL)

	require.Len(t, provider.createdParams, 1)
	params := provider.createdParams[0]

	require.Len(t, params.LineItems, 1)
	assert.Equal(t, "Desk Lamp", params.LineItems[0].Name)
	assert.Equal(t, int64(3999), params.LineItems[0].UnitAmount)
	assert.Equal(t, int64(2), params.LineItems[0].Quantity)

	assert.Equal(t, int64(0), params.DiscountPercentage)
	assert.Equal(t, "http://localhost:5173/purchase-success?session_id={CHECKOUT_SESSION_ID}", params.SuccessURL)
	assert.Equal(t, "http://localhost:5173/purchase-cancel", params.CancelURL)

	assert.Equal(t, user.ID.Hex(), params.Metadata["userId"])
	assert.Equal(t, "", params.Metadata["couponCode"])

	items, err := decodeCartMetadata(params.Metadata["products"])
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, productID, items[0].ID)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, 39.99, items[0].Price)

	address, err := decodeShippingAddress(params.Metadata["shippingAddress"])
	require.NoError(t, err)
	require.NotNil(t, address)
	assert.Equal(t, "Springfield", address.City)
}

func TestCreateCheckoutSessionProviderFailure(t *testing.T) {
	c, recorder := newTestContext(t, `{"products":[{"_id":"abc","price":10,"quantity":1}]}`)
	authenticate(c)
	provider := &stubProvider{createErr: errors.New("gateway unreachable")}

	CreateCheckoutSessionHandler(c, nil, provider, "http://localhost:5173")

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "gateway unreachable")
}

func TestCheckoutSuccessRequiresSessionID(t *testing.T) {
	c, recorder := newTestContext(t, `{}`)
	provider := &stubProvider{}

	CheckoutSuccessHandler(c, nil, provider, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCheckoutSuccessRejectsUnpaidSession(t *testing.T) {
	c, recorder := newTestContext(t, `{"sessionId":"cs_test_unpaid"}`)
	provider := &stubProvider{
		sessions: map[string]*payment.Session{
			"cs_test_unpaid": {
				ID:            "cs_test_unpaid",
				PaymentStatus: "unpaid",
			},
		},
	}

	CheckoutSuccessHandler(c, nil, provider, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Payment not completed")
}

func TestCheckoutSuccessProviderFailure(t *testing.T) {
	c, recorder := newTestContext(t, `{"sessionId":"cs_test_123"}`)
	provider := &stubProvider{retrieveErr: errors.New("gateway unreachable")}

	CheckoutSuccessHandler(c, nil, provider, nil)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "gateway unreachable")
}

func TestCreateCodOrderRequiresAuth(t *testing.T) {
	c, recorder := newTestContext(t, `{"products":[{"_id":"x","price":10,"quantity":1}]}`)

	CreateCodOrderHandler(c, nil, nil)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreateCodOrderRejectsEmptyCart(t *testing.T) {
	c, recorder := newTestContext(t, `{"products":[]}`)
	authenticate(c)

	CreateCodOrderHandler(c, nil, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
