package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/errhttp"
	"github.com/spicyjump/storefront/pkg/httpx"
	pkgvalidator "github.com/spicyjump/storefront/pkg/validator"
	appsvcs "github.com/spicyjump/storefront/services/review/application/services"
	"github.com/spicyjump/storefront/services/review/domain/models"
	"github.com/spicyjump/storefront/services/review/domain/repositories"
)

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"min=1,max=5" example:"5"`
	Title     string    `json:"title" validate:"max=200" example:"최고의 떡볶이"`
	Content   string    `json:"content" validate:"required"`
	Images    []string  `json:"images" validate:"max=10,dive,url"`
} // @name CreateReviewRequest

// UpdateReviewRequest is a partial update; omitted fields are kept.
type UpdateReviewRequest struct {
	Rating  *int     `json:"rating" validate:"omitempty,min=1,max=5"`
	Title   *string  `json:"title" validate:"omitempty,max=200"`
	Content *string  `json:"content"`
	Images  []string `json:"images" validate:"omitempty,max=10,dive,url"`
} // @name UpdateReviewRequest

type ReviewResponse struct {
	ID                 uuid.UUID `json:"id"`
	ProductID          uuid.UUID `json:"product_id"`
	UserID             uuid.UUID `json:"user_id"`
	Rating             int       `json:"rating" example:"5"`
	Title              string    `json:"title,omitempty"`
	Content            string    `json:"content"`
	Images             []string  `json:"images"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	Status             string    `json:"status" example:"PUBLISHED"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
} // @name ReviewResponse

// ReviewPage is the paginated review list envelope.
type ReviewPage = httpx.Page[ReviewResponse]

type RatingSummaryResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	AverageRating decimal.Decimal `json:"average_rating" swaggertype:"string" example:"4.25"`
	TotalReviews  int             `json:"total_reviews"`
	Distribution  map[string]int  `json:"rating_distribution"`
} // @name RatingSummaryResponse

// ReviewHandler serves the /reviews endpoints.
type ReviewHandler struct {
	svc *appsvcs.Services
}

func NewReviewHandler(svc *appsvcs.Services) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// Create reviews a product as the caller.
//
//	@Summary	Write review
//	@Tags		reviews
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		CreateReviewRequest	true	"Review"
//	@Success	201		{object}	ReviewResponse
//	@Failure	404		{object}	httpx.ErrorBody	"REVIEW001 or REVIEW002"
//	@Failure	409		{object}	httpx.ErrorBody	"REVIEW003"
//	@Failure	422		{object}	httpx.ErrorBody
//	@Router		/reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateReviewRequest](w, r)
	if !ok {
		return
	}
	rv, err := h.svc.Reviews.Create(r.Context(), models.NewReviewParams{
		ProductID: req.ProductID,
		UserID:    p.UserID,
		Rating:    req.Rating,
		Title:     req.Title,
		Content:   req.Content,
		Images:    req.Images,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toReviewResponse(rv))
}

// Get returns one review.
//
//	@Summary	Get review
//	@Tags		reviews
//	@Produce	json
//	@Param		id	path		string	true	"Review ID"
//	@Success	200	{object}	ReviewResponse
//	@Failure	404	{object}	httpx.ErrorBody	"REVIEW004"
//	@Router		/reviews/{id} [get]
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	rv, err := h.svc.Reviews.Get(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toReviewResponse(rv))
}

// Update edits the caller's review.
//
//	@Summary	Update review
//	@Tags		reviews
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"Review ID"
//	@Param		request	body		UpdateReviewRequest	true	"Changes"
//	@Success	200		{object}	ReviewResponse
//	@Failure	403		{object}	httpx.ErrorBody	"REVIEW005"
//	@Failure	404		{object}	httpx.ErrorBody	"REVIEW004"
//	@Router		/reviews/{id} [put]
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateReviewRequest](w, r)
	if !ok {
		return
	}
	rv, err := h.svc.Reviews.Update(r.Context(), p.UserID, id, models.ReviewUpdate{
		Rating:  req.Rating,
		Title:   req.Title,
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toReviewResponse(rv))
}

// Delete removes a review. Author or admin.
//
//	@Summary	Delete review
//	@Tags		reviews
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Review ID"
//	@Success	204
//	@Failure	403	{object}	httpx.ErrorBody	"REVIEW006"
//	@Failure	404	{object}	httpx.ErrorBody	"REVIEW004"
//	@Router		/reviews/{id} [delete]
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Reviews.Delete(r.Context(), p.UserID, p.IsAdmin(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ByProduct lists a product's published reviews, newest first.
//
//	@Summary	Product reviews
//	@Tags		reviews
//	@Produce	json
//	@Param		productId	path		string	true	"Product ID"
//	@Param		page		query		int		false	"Zero-based page"
//	@Param		size		query		int		false	"Page size (max 100)"
//	@Success	200			{object}	ReviewPage
//	@Router		/reviews/product/{productId} [get]
func (h *ReviewHandler) ByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "productId")
	if !ok {
		return
	}
	h.page(w, r, func(opts repositories.QueryOpts) ([]*models.Review, int, error) {
		return h.svc.Reviews.ByProduct(r.Context(), productID, opts)
	})
}

// ByRating lists a product's published reviews with one star rating.
//
//	@Summary	Product reviews by rating
//	@Tags		reviews
//	@Produce	json
//	@Param		productId	path		string	true	"Product ID"
//	@Param		rating		path		int		true	"1 to 5"
//	@Param		page		query		int		false	"Zero-based page"
//	@Param		size		query		int		false	"Page size (max 100)"
//	@Success	200			{object}	ReviewPage
//	@Router		/reviews/product/{productId}/rating/{rating} [get]
func (h *ReviewHandler) ByRating(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "productId")
	if !ok {
		return
	}
	rating, err := strconv.Atoi(chi.URLParam(r, "rating"))
	if err != nil {
		httpx.JSONErrorCode(w, http.StatusBadRequest, errhttp.CodeValidation, "rating must be a number")
		return
	}
	h.page(w, r, func(opts repositories.QueryOpts) ([]*models.Review, int, error) {
		return h.svc.Reviews.ByRating(r.Context(), productID, rating, opts)
	})
}

// Verified lists a product's reviews from buyers who received it.
//
//	@Summary	Verified purchase reviews
//	@Tags		reviews
//	@Produce	json
//	@Param		productId	path		string	true	"Product ID"
//	@Param		page		query		int		false	"Zero-based page"
//	@Param		size		query		int		false	"Page size (max 100)"
//	@Success	200			{object}	ReviewPage
//	@Router		/reviews/product/{productId}/verified [get]
func (h *ReviewHandler) Verified(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "productId")
	if !ok {
		return
	}
	h.page(w, r, func(opts repositories.QueryOpts) ([]*models.Review, int, error) {
		return h.svc.Reviews.Verified(r.Context(), productID, opts)
	})
}

// Summary returns a product's average rating and distribution.
//
//	@Summary	Rating summary
//	@Tags		reviews
//	@Produce	json
//	@Param		productId	path		string	true	"Product ID"
//	@Success	200			{object}	RatingSummaryResponse
//	@Router		/reviews/product/{productId}/summary [get]
func (h *ReviewHandler) Summary(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "productId")
	if !ok {
		return
	}
	sum, err := h.svc.Reviews.Summary(r.Context(), productID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	dist := make(map[string]int, len(sum.Histogram))
	for rating, n := range sum.Histogram {
		dist[strconv.Itoa(rating)] = n
	}
	httpx.JSON(w, http.StatusOK, RatingSummaryResponse{
		ProductID:     sum.ProductID,
		AverageRating: sum.Average,
		TotalReviews:  sum.Count,
		Distribution:  dist,
	})
}

// My lists the caller's reviews, including hidden ones.
//
//	@Summary	My reviews
//	@Tags		reviews
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page	query		int	false	"Zero-based page"
//	@Param		size	query		int	false	"Page size (max 100)"
//	@Success	200		{object}	ReviewPage
//	@Router		/reviews/my [get]
func (h *ReviewHandler) My(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	h.page(w, r, func(opts repositories.QueryOpts) ([]*models.Review, int, error) {
		return h.svc.Reviews.Mine(r.Context(), p.UserID, opts)
	})
}

// Latest lists the newest published reviews across the store.
//
//	@Summary	Latest reviews
//	@Tags		reviews
//	@Produce	json
//	@Param		page	query		int	false	"Zero-based page"
//	@Param		size	query		int	false	"Page size (max 100)"
//	@Success	200		{object}	ReviewPage
//	@Router		/reviews/latest [get]
func (h *ReviewHandler) Latest(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, func(opts repositories.QueryOpts) ([]*models.Review, int, error) {
		return h.svc.Reviews.Latest(r.Context(), opts)
	})
}

func (h *ReviewHandler) page(w http.ResponseWriter, r *http.Request, list func(repositories.QueryOpts) ([]*models.Review, int, error)) {
	page := httpx.ParsePage(r)
	reviews, total, err := list(repositories.QueryOpts{Limit: page.Limit(), Offset: page.Offset()})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]ReviewResponse, len(reviews))
	for i, rv := range reviews {
		out[i] = toReviewResponse(rv)
	}
	httpx.JSON(w, http.StatusOK, httpx.NewPage(out, page, total))
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpx.JSONErrorCode(w, http.StatusBadRequest, errhttp.CodeValidation, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func toReviewResponse(rv *models.Review) ReviewResponse {
	images := rv.Images
	if images == nil {
		images = []string{}
	}
	return ReviewResponse{
		ID:                 rv.ID,
		ProductID:          rv.ProductID,
		UserID:             rv.UserID,
		Rating:             rv.Rating,
		Title:              rv.Title,
		Content:            rv.Content,
		Images:             images,
		IsVerifiedPurchase: rv.VerifiedPurchase,
		Status:             string(rv.Status),
		CreatedAt:          rv.CreatedAt,
		UpdatedAt:          rv.UpdatedAt,
	}
}
