package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/errhttp"
	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/i18n"
	pkgvalidator "github.com/spicyjump/storefront/pkg/validator"
	appsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	"github.com/spicyjump/storefront/services/catalog/domain/models"
	"github.com/spicyjump/storefront/services/catalog/domain/repositories"
)

// CreateProductRequest is the request body for POST /products.
type CreateProductRequest struct {
	CategoryID    uuid.UUID       `json:"category_id" validate:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	Name          string          `json:"name" validate:"required,max=500" example:"불닭볶음면"`
	NameEn        string          `json:"name_en" validate:"max=500" example:"Buldak Spicy Chicken Ramen"`
	Description   string          `json:"description" validate:"required" example:"매운 닭고기 맛 볶음면"`
	DescriptionEn string          `json:"description_en" example:"Spicy chicken flavored stir-fried noodles"`
	Price         decimal.Decimal `json:"price" validate:"money" swaggertype:"string" example:"4.50"`
	Currency      string          `json:"currency" validate:"omitempty,iso4217" example:"USD"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0" example:"100"`
	Images        []string        `json:"images" validate:"max=20,dive,required"`
} // @name CreateProductRequest

// UpdateProductRequest is a partial update; omitted fields are unchanged.
type UpdateProductRequest struct {
	CategoryID    *uuid.UUID       `json:"category_id"`
	Name          *string          `json:"name" validate:"omitempty,min=1,max=500"`
	NameEn        *string          `json:"name_en" validate:"omitempty,max=500"`
	Description   *string          `json:"description" validate:"omitempty,min=1"`
	DescriptionEn *string          `json:"description_en"`
	Price         *decimal.Decimal `json:"price" validate:"omitempty,money" swaggertype:"string" example:"5.00"`
	Currency      *string          `json:"currency" validate:"omitempty,iso4217"`
	StockQuantity *int             `json:"stock_quantity" validate:"omitempty,min=0"`
	Images        []string         `json:"images" validate:"omitempty,max=20,dive,required"`
} // @name UpdateProductRequest

// UploadURLRequest asks for a presigned image upload.
type UploadURLRequest struct {
	ContentType string `json:"content_type" validate:"required" example:"image/jpeg"`
} // @name UploadURLRequest

// ProductResponse is a product with display fields resolved for the request language.
type ProductResponse struct {
	ID                 uuid.UUID       `json:"id"`
	SellerID           uuid.UUID       `json:"seller_id"`
	CategoryID         uuid.UUID       `json:"category_id"`
	Name               string          `json:"name"`
	NameEn             string          `json:"name_en,omitempty"`
	Description        string          `json:"description"`
	DescriptionEn      string          `json:"description_en,omitempty"`
	DisplayName        string          `json:"display_name"`
	DisplayDescription string          `json:"display_description"`
	Price              decimal.Decimal `json:"price" swaggertype:"string" example:"4.50"`
	Currency           string          `json:"currency" example:"USD"`
	StockQuantity      int             `json:"stock_quantity"`
	Images             []string        `json:"images"`
	Status             string          `json:"status" example:"PUBLISHED"`
	ViewCount          int64           `json:"view_count"`
	RatingAverage      decimal.Decimal `json:"rating_average" swaggertype:"string" example:"4.50"`
	ReviewCount        int             `json:"review_count"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
} // @name ProductResponse

// ProductPage is the paginated product list envelope.
type ProductPage = httpx.Page[ProductResponse]

// ProductHandler serves the /products endpoints.
type ProductHandler struct {
	svc *appsvcs.Services
}

func NewProductHandler(svc *appsvcs.Services) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create lists a new DRAFT product for the calling seller.
//
//	@Summary	Create product
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		CreateProductRequest	true	"Product"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	403		{object}	httpx.ErrorBody	"SECURITY003"
//	@Failure	404		{object}	httpx.ErrorBody	"PRODUCT002"
//	@Failure	422		{object}	httpx.ErrorBody
//	@Router		/products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateProductRequest](w, r)
	if !ok {
		return
	}
	product, err := h.svc.Products.Create(r.Context(), models.NewProductParams{
		SellerID:      p.UserID,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		NameEn:        req.NameEn,
		Description:   req.Description,
		DescriptionEn: req.DescriptionEn,
		Price:         req.Price,
		Currency:      req.Currency,
		StockQuantity: req.StockQuantity,
		Images:        req.Images,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toProductResponse(i18n.FromCtx(r.Context()), product))
}

// Get returns a product and counts a view.
//
//	@Summary	Get product
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	httpx.ErrorBody	"PRODUCT003"
//	@Router		/products/{id} [get]
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	product, err := h.svc.Products.Get(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(i18n.FromCtx(r.Context()), product))
}

// Update changes a product owned by the caller.
//
//	@Summary	Update product
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Product ID"
//	@Param		request	body		UpdateProductRequest	true	"Fields to change"
//	@Success	200		{object}	ProductResponse
//	@Failure	403		{object}	httpx.ErrorBody	"PRODUCT004"
//	@Failure	404		{object}	httpx.ErrorBody	"PRODUCT003"
//	@Router		/products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateProductRequest](w, r)
	if !ok {
		return
	}
	product, err := h.svc.Products.Update(r.Context(), p.UserID, id, models.ProductUpdate{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		NameEn:        req.NameEn,
		Description:   req.Description,
		DescriptionEn: req.DescriptionEn,
		Price:         req.Price,
		Currency:      req.Currency,
		StockQuantity: req.StockQuantity,
		Images:        req.Images,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(i18n.FromCtx(r.Context()), product))
}

// Delete soft deletes a product owned by the caller.
//
//	@Summary	Delete product
//	@Tags		products
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Product ID"
//	@Success	204
//	@Failure	403	{object}	httpx.ErrorBody	"PRODUCT005"
//	@Failure	404	{object}	httpx.ErrorBody	"PRODUCT003"
//	@Router		/products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Products.Delete(r.Context(), p.UserID, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeStatus moves a product through the status table.
//
//	@Summary	Change product status
//	@Tags		products
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Product ID"
//	@Param		status	query		string	true	"DRAFT, PUBLISHED, SOLDOUT or DISCONTINUED"
//	@Success	200		{object}	ProductResponse
//	@Failure	403		{object}	httpx.ErrorBody	"PRODUCT006"
//	@Failure	409		{object}	httpx.ErrorBody	"PRODUCT008"
//	@Router		/products/{id}/status [patch]
func (h *ProductHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		httpx.JSONErrorCode(w, http.StatusBadRequest, errhttp.CodeValidation, "status query parameter is required")
		return
	}
	product, err := h.svc.Products.ChangeStatus(r.Context(), p.UserID, id, models.Status(status))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(i18n.FromCtx(r.Context()), product))
}

// UploadURL presigns an image upload for a product owned by the caller.
//
//	@Summary	Image upload URL
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Product ID"
//	@Param		request	body		UploadURLRequest	true	"Image content type"
//	@Success	200		{object}	storage.UploadURL
//	@Failure	403		{object}	httpx.ErrorBody	"PRODUCT004"
//	@Failure	503		{object}	httpx.ErrorBody	"STORAGE_UNAVAILABLE"
//	@Router		/products/{id}/images/upload-url [post]
func (h *ProductHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UploadURLRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Products.ImageUploadURL(r.Context(), p.UserID, id, req.ContentType)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// List returns published products, newest first.
//
//	@Summary	List products
//	@Tags		products
//	@Produce	json
//	@Param		page	query		int	false	"Zero-based page"
//	@Param		size	query		int	false	"Page size (max 100)"
//	@Success	200		{object}	ProductPage
//	@Router		/products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, repositories.ProductFilter{Status: models.StatusPublished})
}

// ByCategory lists published products in a category.
//
//	@Summary	Products by category
//	@Tags		products
//	@Produce	json
//	@Param		categoryId	path		string	true	"Category ID"
//	@Success	200			{object}	ProductPage
//	@Router		/products/category/{categoryId} [get]
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "categoryId")
	if !ok {
		return
	}
	h.list(w, r, repositories.ProductFilter{Status: models.StatusPublished, CategoryID: &id})
}

// BySeller lists every non-deleted product of a seller.
//
//	@Summary	Products by seller
//	@Tags		products
//	@Produce	json
//	@Param		sellerId	path		string	true	"Seller ID"
//	@Success	200			{object}	ProductPage
//	@Router		/products/seller/{sellerId} [get]
func (h *ProductHandler) BySeller(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "sellerId")
	if !ok {
		return
	}
	h.list(w, r, repositories.ProductFilter{SellerID: &id})
}

// Search matches published products by Korean or English name.
//
//	@Summary	Search products
//	@Tags		products
//	@Produce	json
//	@Param		keyword	query		string	true	"Search term"
//	@Success	200		{object}	ProductPage
//	@Failure	400		{object}	httpx.ErrorBody
//	@Router		/products/search [get]
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		httpx.JSONErrorCode(w, http.StatusBadRequest, errhttp.CodeValidation, "keyword query parameter is required")
		return
	}
	h.list(w, r, repositories.ProductFilter{Status: models.StatusPublished, Keyword: keyword})
}

// Popular lists published products by view count.
//
//	@Summary	Popular products
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	ProductPage
//	@Router		/products/popular [get]
func (h *ProductHandler) Popular(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, repositories.ProductFilter{Status: models.StatusPublished, Sort: repositories.SortPopular})
}

// TopRated lists published products by rating, then review count.
//
//	@Summary	Top rated products
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	ProductPage
//	@Router		/products/top-rated [get]
func (h *ProductHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, repositories.ProductFilter{Status: models.StatusPublished, Sort: repositories.SortTopRated})
}

// Latest lists the newest published products.
//
//	@Summary	Latest products
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	ProductPage
//	@Router		/products/latest [get]
func (h *ProductHandler) Latest(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, repositories.ProductFilter{Status: models.StatusPublished, Sort: repositories.SortNewest})
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, f repositories.ProductFilter) {
	page := httpx.ParsePage(r)
	products, total, err := h.svc.Products.List(r.Context(), f, repositories.QueryOpts{
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	lang := i18n.FromCtx(r.Context())
	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = toProductResponse(lang, p)
	}
	httpx.JSON(w, http.StatusOK, httpx.NewPage(items, page, total))
}

func toProductResponse(lang i18n.Lang, p *models.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:                 p.ID,
		SellerID:           p.SellerID,
		CategoryID:         p.CategoryID,
		Name:               p.Name,
		NameEn:             p.NameEn,
		Description:        p.Description,
		DescriptionEn:      p.DescriptionEn,
		DisplayName:        i18n.Pick(lang, p.Name, p.NameEn),
		DisplayDescription: i18n.Pick(lang, p.Description, p.DescriptionEn),
		Price:              p.Price,
		Currency:           p.Currency,
		StockQuantity:      p.StockQuantity,
		Images:             images,
		Status:             string(p.Status),
		ViewCount:          p.ViewCount,
		RatingAverage:      p.RatingAverage,
		ReviewCount:        p.ReviewCount,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
