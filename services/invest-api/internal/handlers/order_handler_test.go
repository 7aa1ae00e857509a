package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/services/invest-api/internal/views"
)

func TestPlaceOrder_Created(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/orders", customerToken, validOrderBody())

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get(pkg.HeaderTraceId))

	got := decodeJSON[views.OrderResponse](t, w)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "processing", got.Status)
	assert.Equal(t, env.customerID.String(), got.UserID)
	assert.Equal(t, "5000.00", got.Amount)
}

func TestPlaceOrder_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	body := validOrderBody()
	delete(body, "schemeName")
	w := env.do(t, http.MethodPost, "/api/v1/orders", customerToken, body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	got := decodeJSON[pkg.ErrorResponse](t, w)
	assert.Equal(t, pkg.ErrInvalidInputCode.Code, got.Code)
	assert.NotEmpty(t, got.Details)
}

func TestPlaceOrder_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/orders", "", validOrderBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/orders", "unknown-token", validOrderBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlaceOrder_SellerForbidden(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/orders", sellerToken, validOrderBody())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetOrder_NotFoundAndBadID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/orders/7b3e5a90-8828-43b0-9f5e-1a2b3c4d5e6f", customerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", customerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	env := newTestEnv(t)

	created := decodeJSON[views.OrderResponse](t,
		env.do(t, http.MethodPost, "/api/v1/orders", customerToken, validOrderBody()))

	w := env.do(t, http.MethodPut, "/api/v1/orders/"+created.ID+"/status", customerToken,
		map[string]string{"status": "executed"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON[views.OrderResponse](t, w)
	assert.Equal(t, "executed", got.Status)

	// Terminal: no further transitions.
	w = env.do(t, http.MethodPut, "/api/v1/orders/"+created.ID+"/status", customerToken,
		map[string]string{"status": "failed"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errResp := decodeJSON[pkg.ErrorResponse](t, w)
	assert.Equal(t, pkg.ErrTerminalStatusCode.Code, errResp.Code)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	created := decodeJSON[views.OrderResponse](t,
		env.do(t, http.MethodPost, "/api/v1/orders", customerToken, validOrderBody()))

	w := env.do(t, http.MethodPut, "/api/v1/orders/"+created.ID+"/status", customerToken,
		map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrders_ScopedToCustomer(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/v1/orders", customerToken, validOrderBody())
	env.do(t, http.MethodPost, "/api/v1/orders", customerToken, validOrderBody())

	w := env.do(t, http.MethodGet, "/api/v1/orders", customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON[[]views.OrderResponse](t, w)
	assert.Len(t, got, 2)
}

func TestSellerOrders_SeesAllAndFilters(t *testing.T) {
	env := newTestEnv(t)

	created := decodeJSON[views.OrderResponse](t,
		env.do(t, http.MethodPost, "/api/v1/orders", customerToken, validOrderBody()))
	env.do(t, http.MethodPost, "/api/v1/orders", customerToken, validOrderBody())
	env.do(t, http.MethodPut, "/api/v1/orders/"+created.ID+"/status", customerToken,
		map[string]string{"status": "executed"})

	w := env.do(t, http.MethodGet, "/api/v1/seller/orders", sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeJSON[[]views.OrderResponse](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/v1/seller/orders?status=executed", sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	filtered := decodeJSON[[]views.OrderResponse](t, w)
	require.Len(t, filtered, 1)
	assert.Equal(t, created.ID, filtered[0].ID)

	// Customers cannot reach the seller surface.
	w = env.do(t, http.MethodGet, "/api/v1/seller/orders", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrders_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodDelete, "/api/v1/orders", customerToken, nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	allow := w.Header().Get("Allow")
	assert.Contains(t, allow, http.MethodGet)
	assert.Contains(t, allow, http.MethodPost)

	got := decodeJSON[pkg.ErrorResponse](t, w)
	assert.Equal(t, "Method Not Allowed", got.Message)
}
