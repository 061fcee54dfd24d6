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
	appsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	catalogdomain "github.com/spicyjump/storefront/services/catalog/domain"
	"github.com/spicyjump/storefront/services/catalog/domain/models"
	"github.com/spicyjump/storefront/services/catalog/domain/repositories"
)

type repoStub struct {
	products   map[uuid.UUID]*models.Product
	lastFilter repositories.ProductFilter
	lastOpts   repositories.QueryOpts
}

func (s *repoStub) Create(_ context.Context, p *models.Product) error {
	s.products[p.ID] = p
	return nil
}

func (s *repoStub) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, catalogdomain.ErrProductNotFound
}

func (s *repoStub) Update(_ context.Context, p *models.Product) error {
	s.products[p.ID] = p
	return nil
}

func (s *repoStub) List(_ context.Context, f repositories.ProductFilter, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	s.lastFilter, s.lastOpts = f, opts
	var out []*models.Product
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, 45, nil
}

func (s *repoStub) DecreaseStock(context.Context, uuid.UUID, int, time.Time) error { return nil }
func (s *repoStub) RestoreStock(context.Context, uuid.UUID, int, time.Time) error  { return nil }
func (s *repoStub) UpdateRating(context.Context, uuid.UUID, decimal.Decimal, int) error {
	return nil
}
func (s *repoStub) AddViews(context.Context, map[uuid.UUID]int64) error { return nil }

type categoryStub struct{ cats []*models.Category }

func (s categoryStub) List(context.Context) ([]*models.Category, error) { return s.cats, nil }

func (s categoryStub) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	for _, c := range s.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, catalogdomain.ErrCategoryNotFound
}

func (s categoryStub) Children(context.Context, uuid.UUID) ([]*models.Category, error) {
	return nil, nil
}

func (s categoryStub) Search(context.Context, string) ([]*models.Category, error) { return nil, nil }

func newRouter(repo *repoStub, cats categoryStub) http.Handler {
	log := logger.New(&config.Config{LogLevel: "error"})
	svcs := &appsvcs.Services{
		Categories: appsvcs.NewCategoryService(cats),
		Products:   appsvcs.NewProductService(repo, cats, nil, nil, nil, log),
	}
	ph := NewProductHandler(svcs)
	ch := NewCategoryHandler(svcs)

	r := chi.NewRouter()
	r.Use(i18n.Middleware(i18n.Korean))
	r.Get("/categories", ch.List)
	r.Get("/categories/{id}", ch.Get)
	r.Get("/products", ph.List)
	r.Get("/products/search", ph.Search)
	r.Get("/products/{id}", ph.Get)
	r.Post("/products", ph.Create)
	r.Patch("/products/{id}/status", ph.ChangeStatus)
	return r
}

func sampleProduct() *models.Product {
	return &models.Product{
		ID: uuid.New(), SellerID: uuid.New(), CategoryID: uuid.New(),
		Name: "불닭볶음면", NameEn: "Buldak Ramen", Description: "매운 볶음면",
		Price: decimal.RequireFromString("4.50"), Currency: "USD", StockQuantity: 3,
		Status: models.StatusPublished,
	}
}

func TestGetProduct_Localized(t *testing.T) {
	p := sampleProduct()
	router := newRouter(&repoStub{products: map[uuid.UUID]*models.Product{p.ID: p}}, categoryStub{})

	tests := []struct {
		query           string
		wantName        string
		wantDescription string
	}{
		{"", "불닭볶음면", "매운 볶음면"},
		{"?lang=en", "Buldak Ramen", "매운 볶음면"},
	}
	for _, tt := range tests {
		t.Run("lang"+tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+p.ID.String()+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var resp ProductResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.DisplayName != tt.wantName || resp.DisplayDescription != tt.wantDescription {
				t.Fatalf("unexpected display fields: %q / %q", resp.DisplayName, resp.DisplayDescription)
			}
			if resp.Images == nil || !resp.Price.Equal(p.Price) {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestGetProduct_Errors(t *testing.T) {
	router := newRouter(&repoStub{products: map[uuid.UUID]*models.Product{}}, categoryStub{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil))
	var body httpx.ErrorBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusNotFound || body.Code != "PRODUCT003" {
		t.Fatalf("expected 404 PRODUCT003, got %d %s", w.Code, w.Body.String())
	}
}

func TestListProducts_Pagination(t *testing.T) {
	p := sampleProduct()
	repo := &repoStub{products: map[uuid.UUID]*models.Product{p.ID: p}}
	router := newRouter(repo, categoryStub{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products?page=2&size=10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var page ProductPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 45 || page.TotalPages != 5 || page.Page != 2 || page.Size != 10 {
		t.Fatalf("unexpected envelope: %+v", page)
	}
	if repo.lastOpts.Offset != 20 || repo.lastFilter.Status != models.StatusPublished {
		t.Fatalf("unexpected query: %+v %+v", repo.lastFilter, repo.lastOpts)
	}
}

func TestSearchProducts_RequiresKeyword(t *testing.T) {
	router := newRouter(&repoStub{products: map[uuid.UUID]*models.Product{}}, categoryStub{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/search", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateProduct(t *testing.T) {
	category := &models.Category{ID: uuid.New(), Name: "라면"}
	repo := &repoStub{products: map[uuid.UUID]*models.Product{}}
	router := newRouter(repo, categoryStub{cats: []*models.Category{category}})
	body := `{"category_id":"` + category.ID.String() + `","name":"신라면","description":"Spicy","price":"3.20","stock_quantity":10}`

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: expected 401, got %d", w.Code)
	}

	seller := uuid.New()
	r := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	r = r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: seller, Role: auth.RoleSeller}))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp ProductResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "DRAFT" || resp.SellerID != seller || resp.Currency != "USD" {
		t.Fatalf("unexpected product: %+v", resp)
	}
}

func TestChangeStatus_MissingParam(t *testing.T) {
	p := sampleProduct()
	router := newRouter(&repoStub{products: map[uuid.UUID]*models.Product{p.ID: p}}, categoryStub{})

	r := httptest.NewRequest(http.MethodPatch, "/products/"+p.ID.String()+"/status", nil)
	r = r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: p.SellerID, Role: auth.RoleSeller}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListCategories_Tree(t *testing.T) {
	root := &models.Category{ID: uuid.New(), Name: "소스", NameEn: "Sauces"}
	child := &models.Category{ID: uuid.New(), ParentID: &root.ID, Name: "고추장"}
	router := newRouter(&repoStub{}, categoryStub{cats: []*models.Category{root, child}})

	r := httptest.NewRequest(http.MethodGet, "/categories?lang=en", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	var resp []CategoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 1 || resp[0].DisplayName != "Sauces" || len(resp[0].Children) != 1 {
		t.Fatalf("unexpected tree: %+v", resp)
	}
	if resp[0].Children[0].DisplayName != "고추장" {
		t.Fatalf("missing English name must fall back to Korean, got %q", resp[0].Children[0].DisplayName)
	}
}
