package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spicyjump/storefront/pkg/errhttp"
	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/i18n"
	appsvcs "github.com/spicyjump/storefront/services/catalog/application/services"
	"github.com/spicyjump/storefront/services/catalog/domain/models"
)

// CategoryResponse is a category with its localized display name.
type CategoryResponse struct {
	ID          uuid.UUID          `json:"id"`
	ParentID    *uuid.UUID         `json:"parent_id,omitempty"`
	Name        string             `json:"name" example:"라면"`
	NameEn      string             `json:"name_en,omitempty" example:"Ramen"`
	DisplayName string             `json:"display_name" example:"Ramen"`
	SortOrder   int                `json:"sort_order"`
	CreatedAt   time.Time          `json:"created_at"`
	Children    []CategoryResponse `json:"children,omitempty"`
} // @name CategoryResponse

// CategoryHandler serves the /categories endpoints.
type CategoryHandler struct {
	svc *appsvcs.Services
}

func NewCategoryHandler(svc *appsvcs.Services) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// List returns the category tree.
//
//	@Summary	Category tree
//	@Tags		categories
//	@Produce	json
//	@Param		lang	query	string	false	"ko or en"
//	@Success	200		{array}	CategoryResponse
//	@Router		/categories [get]
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	roots, err := h.svc.Categories.Tree(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCategoryResponses(i18n.FromCtx(r.Context()), roots))
}

// Get returns one category.
//
//	@Summary	Get category
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		string	true	"Category ID"
//	@Success	200	{object}	CategoryResponse
//	@Failure	400	{object}	httpx.ErrorBody
//	@Failure	404	{object}	httpx.ErrorBody	"CATEGORY001"
//	@Router		/categories/{id} [get]
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.Categories.Get(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCategoryResponse(i18n.FromCtx(r.Context()), c))
}

// Children returns the direct children of a category.
//
//	@Summary	Child categories
//	@Tags		categories
//	@Produce	json
//	@Param		id	path	string	true	"Category ID"
//	@Success	200	{array}	CategoryResponse
//	@Failure	404	{object}	httpx.ErrorBody	"CATEGORY001"
//	@Router		/categories/{id}/children [get]
func (h *CategoryHandler) Children(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	children, err := h.svc.Categories.Children(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCategoryResponses(i18n.FromCtx(r.Context()), children))
}

// Search matches categories by Korean or English name.
//
//	@Summary	Search categories
//	@Tags		categories
//	@Produce	json
//	@Param		keyword	query	string	true	"Search term"
//	@Success	200		{array}	CategoryResponse
//	@Router		/categories/search [get]
func (h *CategoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.Categories.Search(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCategoryResponses(i18n.FromCtx(r.Context()), found))
}

// pathUUID parses a chi URL parameter, answering 400 when it is not a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpx.JSONErrorCode(w, http.StatusBadRequest, errhttp.CodeValidation, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func toCategoryResponses(lang i18n.Lang, cs []*models.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(cs))
	for i, c := range cs {
		out[i] = toCategoryResponse(lang, c)
	}
	return out
}

func toCategoryResponse(lang i18n.Lang, c *models.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:          c.ID,
		ParentID:    c.ParentID,
		Name:        c.Name,
		NameEn:      c.NameEn,
		DisplayName: i18n.Pick(lang, c.Name, c.NameEn),
		SortOrder:   c.SortOrder,
		CreatedAt:   c.CreatedAt,
	}
	if len(c.Children) > 0 {
		resp.Children = toCategoryResponses(lang, c.Children)
	}
	return resp
}
