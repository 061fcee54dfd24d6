package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/config"
	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/i18n"
	"github.com/spicyjump/storefront/pkg/logger"
	appsvcs "github.com/spicyjump/storefront/services/ordering/application/services"
	orderingdomain "github.com/spicyjump/storefront/services/ordering/domain"
	"github.com/spicyjump/storefront/services/ordering/domain/models"
	"github.com/spicyjump/storefront/services/ordering/domain/ports"
	"github.com/spicyjump/storefront/services/ordering/domain/repositories"
)

type orderStore struct {
	byID map[uuid.UUID]*models.Order
}

func (s *orderStore) Create(_ context.Context, o *models.Order) error {
	s.byID[o.ID] = o
	return nil
}

func (s *orderStore) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := s.byID[id]
	if !ok {
		return nil, orderingdomain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *orderStore) ListByBuyer(_ context.Context, buyer uuid.UUID, _ repositories.QueryOpts) ([]*models.Order, int, error) {
	var out []*models.Order
	for _, o := range s.byID {
		if o.BuyerID == buyer {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (s *orderStore) ListBySeller(context.Context, uuid.UUID, repositories.QueryOpts) ([]*models.Order, int, error) {
	return nil, 0, nil
}

func (s *orderStore) UpdateStatus(_ context.Context, o *models.Order, _ models.Status, _ *repositories.Cancellation) error {
	s.byID[o.ID] = o
	return nil
}

func (s *orderStore) StalePending(context.Context, time.Time, int) ([]uuid.UUID, error) {
	return nil, nil
}

func (s *orderStore) SellerStats(_ context.Context, seller uuid.UUID) (*models.SellerStats, error) {
	return &models.SellerStats{
		SellerID:     seller,
		TotalOrders:  3,
		Revenue:      decimal.RequireFromString("42.00"),
		StatusCounts: map[models.Status]int{models.StatusPaid: 2, models.StatusCancelled: 1},
	}, nil
}

func (s *orderStore) TopSelling(context.Context, int) ([]models.ProductSales, error) { return nil, nil }
func (s *orderStore) BuyerSummary(context.Context, uuid.UUID) (*models.BuyerSummary, error) {
	return &models.BuyerSummary{}, nil
}
func (s *orderStore) PeriodStats(context.Context, time.Time, time.Time) (*models.PeriodStats, error) {
	return &models.PeriodStats{}, nil
}
func (s *orderStore) HasDelivered(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

type everyone struct{}

func (everyone) Exists(context.Context, uuid.UUID) (bool, error) { return true, nil }

type shelf map[uuid.UUID]*ports.ProductSnapshot

func (s shelf) Product(_ context.Context, id uuid.UUID) (*ports.ProductSnapshot, error) {
	p, ok := s[id]
	if !ok {
		return nil, orderingdomain.ErrProductNotFound
	}
	return p, nil
}

func (s shelf) DecreaseStock(_ context.Context, id uuid.UUID, qty int) error {
	if s[id].Stock < qty {
		return orderingdomain.ErrInsufficientStock
	}
	s[id].Stock -= qty
	return nil
}

func (s shelf) RestoreStock(_ context.Context, id uuid.UUID, qty int) error {
	s[id].Stock += qty
	return nil
}

type env struct {
	router  http.Handler
	store   *orderStore
	buyer   uuid.UUID
	seller  uuid.UUID
	product uuid.UUID
}

func newEnv() *env {
	e := &env{
		store:   &orderStore{byID: map[uuid.UUID]*models.Order{}},
		buyer:   uuid.New(),
		seller:  uuid.New(),
		product: uuid.New(),
	}
	products := shelf{e.product: {
		ID: e.product, SellerID: e.seller, Name: "떡볶이", NameEn: "Tteokbokki",
		Price: decimal.RequireFromString("7.25"), Currency: "USD", Stock: 10, Published: true,
	}}
	log := logger.New(&config.Config{LogLevel: "error"})
	svcs := &appsvcs.Services{Orders: appsvcs.NewOrderService(e.store, everyone{}, products, 30*time.Minute, nil, log)}
	h := NewOrderHandler(svcs)

	r := chi.NewRouter()
	r.Use(i18n.Middleware(i18n.Korean))
	r.Post("/orders", h.Create)
	r.Get("/orders/my", h.My)
	r.Get("/orders/sales/stats", h.SalesStats)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
	r.Post("/orders/{id}/cancel", h.Cancel)
	e.router = r
	return e
}

func (e *env) do(method, target, body string, as uuid.UUID) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if as != uuid.Nil {
		r = r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: as, Role: auth.RoleBuyer}))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func (e *env) createBody(qty int) string {
	items, _ := json.Marshal([]map[string]any{{"product_id": e.product, "quantity": qty}})
	return `{"seller_id":"` + e.seller.String() + `","items":` + string(items) +
		`,"shipping_address":{"recipient":"Kim","address1":"Seoul"}}`
}

func (e *env) place(t *testing.T) OrderResponse {
	t.Helper()
	w := e.do(http.MethodPost, "/orders?lang=en", e.createBody(2), e.buyer)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpx.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body: %v", err)
	}
	return body.Code
}

func TestCreateOrder(t *testing.T) {
	e := newEnv()

	if w := e.do(http.MethodPost, "/orders", e.createBody(1), uuid.Nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", w.Code)
	}

	resp := e.place(t)
	if resp.Status != "PENDING" || resp.BuyerID != e.buyer || !resp.Total.Equal(decimal.RequireFromString("14.50")) {
		t.Fatalf("unexpected order: %+v", resp)
	}
	if len(resp.Items) != 1 || resp.Items[0].DisplayName != "Tteokbokki" {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
	if !strings.HasPrefix(resp.OrderNumber, "ORD-") {
		t.Fatalf("unexpected order number %q", resp.OrderNumber)
	}
}

func TestCreateOrder_Invalid(t *testing.T) {
	e := newEnv()
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"no items", `{"seller_id":"` + e.seller.String() + `","items":[],"shipping_address":{"a":"b"}}`, http.StatusUnprocessableEntity, ""},
		{"too many", e.createBody(11), http.StatusConflict, "ORDER004"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/orders", tt.body, e.buyer)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantCode != "" && errorCode(t, w) != tt.wantCode {
				t.Fatalf("expected %s, got %s", tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestGetOrder_Access(t *testing.T) {
	e := newEnv()
	o := e.place(t)

	if w := e.do(http.MethodGet, "/orders/"+o.ID.String(), "", e.seller); w.Code != http.StatusOK {
		t.Fatalf("seller: expected 200, got %d", w.Code)
	}
	w := e.do(http.MethodGet, "/orders/"+o.ID.String(), "", uuid.New())
	if w.Code != http.StatusForbidden || errorCode(t, w) != "ORDER006" {
		t.Fatalf("stranger: expected 403 ORDER006, got %d %s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodGet, "/orders/nope", "", e.buyer); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}
}

func TestMyOrders(t *testing.T) {
	e := newEnv()
	e.place(t)

	w := e.do(http.MethodGet, "/orders/my?size=5", "", e.buyer)
	var page OrderPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Size != 5 || len(page.Items) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestUpdateStatus(t *testing.T) {
	e := newEnv()
	o := e.place(t)
	target := "/orders/" + o.ID.String() + "/status"

	if w := e.do(http.MethodPatch, target, "", e.seller); w.Code != http.StatusBadRequest {
		t.Fatalf("missing status: expected 400, got %d", w.Code)
	}
	if w := e.do(http.MethodPatch, target+"?status=paid", "", e.buyer); w.Code != http.StatusForbidden {
		t.Fatalf("buyer: expected 403, got %d", w.Code)
	}
	w := e.do(http.MethodPatch, target+"?status=SHIPPING", "", e.seller)
	if w.Code != http.StatusConflict || errorCode(t, w) != "ORDER010" {
		t.Fatalf("skip ahead: expected 409 ORDER010, got %d %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodPatch, target+"?status=paid", "", e.seller)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp OrderResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "PAID" {
		t.Fatalf("expected PAID, got %s", resp.Status)
	}
}

func TestCancelOrder(t *testing.T) {
	e := newEnv()
	o := e.place(t)
	target := "/orders/" + o.ID.String() + "/cancel"

	if w := e.do(http.MethodPost, target, "", e.seller); w.Code != http.StatusForbidden {
		t.Fatalf("seller: expected 403, got %d", w.Code)
	}
	if w := e.do(http.MethodPost, target, "", e.buyer); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w := e.do(http.MethodPost, target, "", e.buyer)
	if w.Code != http.StatusConflict || errorCode(t, w) != "ORDER009" {
		t.Fatalf("second cancel: expected 409 ORDER009, got %d %s", w.Code, w.Body.String())
	}
}

func TestSalesStats(t *testing.T) {
	e := newEnv()
	w := e.do(http.MethodGet, "/orders/sales/stats", "", e.seller)
	var resp SellerStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalOrders != 3 || resp.StatusCounts["PAID"] != 2 || resp.SellerID != e.seller {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}
