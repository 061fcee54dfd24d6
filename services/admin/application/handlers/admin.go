package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/shopspring/decimal"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/errhttp"
	"github.com/spicyjump/storefront/pkg/httpx"
	"github.com/spicyjump/storefront/pkg/logger"
	pkgvalidator "github.com/spicyjump/storefront/pkg/validator"
	appsvcs "github.com/spicyjump/storefront/services/admin/application/services"
	admindomain "github.com/spicyjump/storefront/services/admin/domain"
	"github.com/spicyjump/storefront/services/admin/domain/models"
	identityhandlers "github.com/spicyjump/storefront/services/identity/application/handlers"
	identitymodels "github.com/spicyjump/storefront/services/identity/domain/models"
	identityrepos "github.com/spicyjump/storefront/services/identity/domain/repositories"
	orderinghandlers "github.com/spicyjump/storefront/services/ordering/application/handlers"
)

type SessionLoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"admin@spicyjump.io"`
	Password string `json:"password" validate:"required" example:"Admin123!"`
} // @name SessionLoginRequest

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE SUSPENDED" example:"SUSPENDED"`
} // @name UpdateUserStatusRequest

type DateRangeResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
} // @name DateRangeResponse

type RevenueResponse struct {
	Total        decimal.Decimal `json:"total" swaggertype:"string" example:"50000.00"`
	GrowthRate   decimal.Decimal `json:"growth_rate" swaggertype:"string" example:"15.5"`
	DailyAverage decimal.Decimal `json:"daily_average" swaggertype:"string" example:"1666.67"`
} // @name RevenueResponse

type OrderStatsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
} // @name OrderStatsResponse

type UserStatsResponse struct {
	TotalActive int `json:"total_active"`
	NewUsers    int `json:"new_users"`
} // @name UserStatsResponse

type DashboardResponse struct {
	Period    string             `json:"period" example:"month"`
	DateRange DateRangeResponse  `json:"date_range"`
	Revenue   RevenueResponse    `json:"revenue"`
	Orders    OrderStatsResponse `json:"orders"`
	Users     UserStatsResponse  `json:"users"`
} // @name DashboardResponse

type PurchaseHistoryResponse struct {
	TotalOrders int             `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent" swaggertype:"string" example:"500.00"`
} // @name PurchaseHistoryResponse

type UserBehaviorResponse struct {
	UserID          uuid.UUID               `json:"user_id"`
	BehaviorScore   decimal.Decimal         `json:"behavior_score" swaggertype:"string" example:"85.5"`
	PurchaseHistory PurchaseHistoryResponse `json:"purchase_history"`
	ReviewsWritten  int                     `json:"reviews_written"`
} // @name UserBehaviorResponse

type TopSellingResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name" example:"불닭볶음면"`
	ProductNameEn string          `json:"product_name_en,omitempty" example:"Buldak Ramen"`
	QuantitySold  int             `json:"quantity_sold"`
	Revenue       decimal.Decimal `json:"revenue" swaggertype:"string" example:"129.50"`
	OrderCount    int             `json:"order_count"`
} // @name TopSellingResponse

type UserPage = httpx.Page[identityhandlers.UserResponse]

// AdminHandler serves /admin. Session login and logout are the only routes
// that do not already carry an admin principal.
type AdminHandler struct {
	svc   *appsvcs.Services
	store sessions.Store
	log   logger.Logger
}

func NewAdminHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, store: store, log: log}
}

// Login opens an admin console session.
//
//	@Summary	Admin session login
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		SessionLoginRequest	true	"Credentials"
//	@Success	200		{object}	identityhandlers.UserResponse
//	@Failure	401		{object}	httpx.ErrorBody	"AUTH002"
//	@Failure	403		{object}	httpx.ErrorBody	"SECURITY003"
//	@Router		/admin/session [post]
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SessionLoginRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Identity.Auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if u.Role != identitymodels.RoleAdmin {
		h.log.WarnContext(r.Context(), "non-admin console login", "user_id", u.ID)
		errhttp.WriteError(w, auth.ErrForbidden)
		return
	}
	p := auth.Principal{UserID: u.ID, Email: u.Email, Role: string(u.Role)}
	if err := auth.StartAdminSession(w, r, h.store, p); err != nil {
		h.log.ErrorContext(r.Context(), "admin session not saved", "user_id", u.ID, "error", err)
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, identityhandlers.ToUserResponse(u))
}

// Logout ends the admin console session.
//
//	@Summary	Admin session logout
//	@Tags		admin
//	@Success	204
//	@Router		/admin/session [delete]
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.EndAdminSession(w, r, h.store); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dashboard returns the overview for a period or an explicit date range.
//
//	@Summary	Admin dashboard
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		period		query		string	false	"day, week, month or year"	default(month)
//	@Param		start_date	query		string	false	"ISO date, used with end_date"
//	@Param		end_date	query		string	false	"ISO date, inclusive"
//	@Success	200			{object}	DashboardResponse
//	@Failure	400			{object}	httpx.ErrorBody	"ADMIN002"
//	@Router		/admin/dashboard [get]
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseDate(q.Get("start_date"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	end, err := parseDate(q.Get("end_date"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	d, err := h.svc.Reports.Dashboard(r.Context(), appsvcs.DashboardParams{
		Period: models.Period(q.Get("period")),
		Start:  start,
		End:    end,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDashboardResponse(d))
}

// Users lists accounts, optionally by status.
//
//	@Summary	List users
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		status	query		string	false	"ACTIVE, INACTIVE or SUSPENDED"
//	@Param		page	query		int		false	"Page, from 0"
//	@Param		size	query		int		false	"Page size"
//	@Success	200		{object}	UserPage
//	@Router		/admin/users [get]
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	page := httpx.ParsePage(r)
	status := identitymodels.Status(r.URL.Query().Get("status"))
	users, total, err := h.svc.Identity.Auth.ListUsers(r.Context(), status, identityrepos.QueryOpts{
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	items := make([]identityhandlers.UserResponse, len(users))
	for i, u := range users {
		items[i] = identityhandlers.ToUserResponse(u)
	}
	httpx.JSON(w, http.StatusOK, httpx.NewPage(items, page, total))
}

// UpdateUserStatus activates, deactivates or suspends an account.
//
//	@Summary	Change user status
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"User ID"
//	@Param		request	body		UpdateUserStatusRequest	true	"New status"
//	@Success	200		{object}	identityhandlers.UserResponse
//	@Failure	404		{object}	httpx.ErrorBody	"AUTH005"
//	@Failure	409		{object}	httpx.ErrorBody	"ADMIN001"
//	@Router		/admin/users/{id}/status [patch]
func (h *AdminHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateUserStatusRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Users.SetStatus(r.Context(), p.UserID, id, identitymodels.Status(req.Status))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, identityhandlers.ToUserResponse(u))
}

// UserBehavior scores a user's engagement.
//
//	@Summary	User behavior
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	UserBehaviorResponse
//	@Router		/admin/users/{id}/behavior [get]
func (h *AdminHandler) UserBehavior(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.svc.Reports.UserBehavior(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserBehaviorResponse{
		UserID:        b.UserID,
		BehaviorScore: b.Score,
		PurchaseHistory: PurchaseHistoryResponse{
			TotalOrders: b.TotalOrders,
			TotalSpent:  b.TotalSpent,
		},
		ReviewsWritten: b.ReviewsWritten,
	})
}

// TopSelling ranks products by units sold.
//
//	@Summary	Top selling products
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int	false	"Max rows (1-100)"	default(10)
//	@Success	200		{array}		TopSellingResponse
//	@Router		/admin/products/top-selling [get]
func (h *AdminHandler) TopSelling(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.svc.Ordering.Orders.TopSellingProducts(r.Context(), limit)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]TopSellingResponse, len(rows))
	for i, row := range rows {
		out[i] = TopSellingResponse{
			ProductID:     row.ProductID,
			ProductName:   row.ProductName,
			ProductNameEn: row.ProductNameEn,
			QuantitySold:  row.QuantitySold,
			Revenue:       row.Revenue,
			OrderCount:    row.OrderCount,
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

// SellerStats returns any seller's order statistics.
//
//	@Summary	Seller statistics
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Seller ID"
//	@Success	200	{object}	orderinghandlers.SellerStatsResponse
//	@Router		/admin/sellers/{id}/stats [get]
func (h *AdminHandler) SellerStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stats, err := h.svc.Ordering.Orders.SellerStats(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orderinghandlers.ToSellerStatsResponse(stats))
}

// parseDate accepts an ISO date or an RFC 3339 timestamp. Empty is nil.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, admindomain.ErrInvalidDateRange
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpx.JSONErrorCode(w, http.StatusBadRequest, errhttp.CodeValidation, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func toDashboardResponse(d *models.Dashboard) DashboardResponse {
	return DashboardResponse{
		Period:    string(d.Period),
		DateRange: DateRangeResponse{Start: d.Range.From, End: d.Range.To},
		Revenue: RevenueResponse{
			Total:        d.Revenue.Total,
			GrowthRate:   d.Revenue.GrowthRate,
			DailyAverage: d.Revenue.DailyAverage,
		},
		Orders: OrderStatsResponse{
			Total:     d.Orders.Total,
			Completed: d.Orders.Completed,
			Cancelled: d.Orders.Cancelled,
		},
		Users: UserStatsResponse{TotalActive: d.Users.TotalActive, NewUsers: d.Users.New},
	}
}
