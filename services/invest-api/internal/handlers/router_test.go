package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundlane/fundlane/pkg"
	"github.com/fundlane/fundlane/pkg/auth"
	middleware "github.com/fundlane/fundlane/pkg/middlewares"
	"github.com/fundlane/fundlane/pkg/repositories"
	pkgviews "github.com/fundlane/fundlane/pkg/views"
	"github.com/fundlane/fundlane/services/invest-api/internal/services"
)

const (
	customerToken = "test-customer-token"
	sellerToken   = "test-seller-token"
)

// noopPublisher satisfies services.ReceiptPublisher for handler tests.
type noopPublisher struct{}

func (noopPublisher) Publish(pkgviews.ReceiptJob) error { return nil }
func (noopPublisher) Close()                            {}

type testEnv struct {
	router      *gin.Engine
	customerID  uuid.UUID
	sellerID    uuid.UUID
	orderRepo   *repositories.MemoryOrderRepository
	mandateRepo *repositories.MemoryMandateRepository
}

// newTestEnv builds the API surface on memory backends with two seeded
// sessions.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	orderRepo := repositories.NewMemoryOrderRepository()
	mandateRepo := repositories.NewMemoryMandateRepository()
	sessions := auth.NewMemorySessionStore()

	customerID := uuid.New()
	sellerID := uuid.New()
	sessions.Seed(customerToken, auth.Identity{UserID: customerID, Name: "Test Customer", Role: pkg.RoleCustomer})
	sessions.Seed(sellerToken, auth.Identity{UserID: sellerID, Name: "Test Seller", Role: pkg.RoleSeller})

	orderService := services.NewOrderService(logger, orderRepo, noopPublisher{})
	mandateService := services.NewMandateService(logger, mandateRepo)

	orderHandler := NewOrderHandler(logger, orderService)
	mandateHandler := NewMandateHandler(logger, mandateService)

	r := gin.New()
	r.HandleMethodNotAllowed = true

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())

	customer := api.Group("")
	customer.Use(middleware.Authenticate(logger, sessions))
	customer.Use(middleware.RequireRole(pkg.RoleCustomer))
	orderHandler.RegisterRoutes(customer)
	mandateHandler.RegisterRoutes(customer)

	seller := api.Group("/seller")
	seller.Use(middleware.Authenticate(logger, sessions))
	seller.Use(middleware.RequireRole(pkg.RoleSeller))
	orderHandler.RegisterSellerRoutes(seller)

	r.NoMethod(MethodNotAllowed(r))

	return &testEnv{
		router:      r,
		customerID:  customerID,
		sellerID:    sellerID,
		orderRepo:   orderRepo,
		mandateRepo: mandateRepo,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func validOrderBody() map[string]any {
	return map[string]any{
		"schemeCode":    120503,
		"schemeName":    "Axis Bluechip Fund Direct Plan Growth",
		"fundHouse":     "Axis Mutual Fund",
		"nav":           "58.41",
		"orderType":     "lumpsum",
		"amount":        "5000",
		"paymentMethod": "upi",
	}
}
