package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/minhtrandev/shopora-backend/internal/address"
	"github.com/minhtrandev/shopora-backend/internal/cart"
	"github.com/minhtrandev/shopora-backend/internal/orders"
	"github.com/minhtrandev/shopora-backend/internal/pricing"
	"github.com/minhtrandev/shopora-backend/pkg/config"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
	"github.com/minhtrandev/shopora-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubCartService struct{}

func (stubCartService) AddToCart(context.Context, uuid.UUID, uuid.UUID, int) (*models.CartLine, error) {
	return &models.CartLine{ID: uuid.New()}, nil
}

func (stubCartService) UpdateQuantity(context.Context, uuid.UUID, uuid.UUID, int) error { return nil }
func (stubCartService) Remove(context.Context, uuid.UUID, uuid.UUID) error              { return nil }
func (stubCartService) List(context.Context, uuid.UUID) ([]cart.LineView, error) {
	return []cart.LineView{}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Quote(context.Context, orders.QuoteInput) (pricing.Quote, error) {
	return pricing.Quote{}, nil
}

func (stubCheckoutService) PlaceOrder(context.Context, orders.PlaceOrderInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), Status: enums.OrderStatusPlaced}, nil
}

type stubOrderService struct {
	listed int
}

func (s *stubOrderService) Get(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), Status: enums.OrderStatusPlaced}, nil
}

func (s *stubOrderService) List(context.Context, uuid.UUID, int, int) ([]models.Order, error) {
	s.listed++
	return []models.Order{}, nil
}

func (s *stubOrderService) Histories(context.Context, uuid.UUID, uuid.UUID) ([]models.OrderStatusHistory, error) {
	return []models.OrderStatusHistory{}, nil
}

func (s *stubOrderService) Bill(context.Context, uuid.UUID, uuid.UUID) (*orders.BillView, error) {
	return &orders.BillView{}, nil
}

func (s *stubOrderService) Cancel(context.Context, uuid.UUID, uuid.UUID, string) error { return nil }
func (s *stubOrderService) RequestReturn(context.Context, uuid.UUID, uuid.UUID, string) error {
	return nil
}

type stubTransitioner struct {
	calls int
}

func (s *stubTransitioner) Transition(context.Context, uuid.UUID, enums.OrderStatus, *string) error {
	s.calls++
	return nil
}

type stubAddressService struct{}

func (stubAddressService) Create(context.Context, uuid.UUID, address.Input) (*models.Address, error) {
	return &models.Address{ID: uuid.New()}, nil
}

func (stubAddressService) List(context.Context, uuid.UUID) ([]models.Address, error) {
	return []models.Address{}, nil
}

func (stubAddressService) Default(context.Context, uuid.UUID) (*models.Address, error) {
	return &models.Address{ID: uuid.New()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(ordersSvc *stubOrderService, admin *stubTransitioner) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		testConfig(),
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		Services{
			Cart:     stubCartService{},
			Checkout: stubCheckoutService{},
			Orders:   ordersSvc,
			Admin:    admin,
			Address:  stubAddressService{},
		},
	)
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(&stubOrderService{}, &stubTransitioner{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestAccountHeaderIsRequired(t *testing.T) {
	router := newTestRouter(&stubOrderService{}, &stubTransitioner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without account header got %d", resp.Code)
	}

	bad := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	bad.Header.Set("X-Account-Id", "not-a-uuid")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, bad)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed account header got %d", resp.Code)
	}
}

func TestOrderListReachesService(t *testing.T) {
	svc := &stubOrderService{}
	router := newTestRouter(svc, &stubTransitioner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("X-Account-Id", uuid.NewString())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.listed != 1 {
		t.Fatalf("expected one list call, got %d", svc.listed)
	}
}

func TestCancelRequiresIdempotencyKey(t *testing.T) {
	router := newTestRouter(&stubOrderService{}, &stubTransitioner{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/cancel", strings.NewReader(`{"reason":"changed my mind"}`))
	req.Header.Set("X-Account-Id", uuid.NewString())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d", resp.Code)
	}
}

func TestAdminStatusRequiresAdminRole(t *testing.T) {
	admin := &stubTransitioner{}
	router := newTestRouter(&stubOrderService{}, admin)
	target := "/api/admin/v1/orders/" + uuid.NewString() + "/status"

	customer := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"status":"confirmed"}`))
	customer.Header.Set("X-Account-Id", uuid.NewString())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer role got %d", resp.Code)
	}
	if admin.calls != 0 {
		t.Fatalf("transition must not run for customer role")
	}

	// The admin role passes the role gate and stops at the idempotency
	// requirement, proving middleware ordering.
	asAdmin := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"status":"confirmed"}`))
	asAdmin.Header.Set("X-Account-Id", uuid.NewString())
	asAdmin.Header.Set("X-Account-Role", "admin")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asAdmin)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d", resp.Code)
	}
}
