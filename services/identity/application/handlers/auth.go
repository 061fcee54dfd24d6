package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/pkg/auth"
	"github.com/spicyjump/storefront/pkg/errhttp"
	"github.com/spicyjump/storefront/pkg/httpx"
	pkgvalidator "github.com/spicyjump/storefront/pkg/validator"
	appsvcs "github.com/spicyjump/storefront/services/identity/application/services"
	"github.com/spicyjump/storefront/services/identity/domain/models"
)

// RefreshTokenHeader carries the refresh token on /auth/refresh and /auth/logout.
const RefreshTokenHeader = "Refresh-Token"

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Email            string `json:"email" validate:"required,email,max=255" example:"minji@spicyjump.io"`
	Password         string `json:"password" validate:"required,min=8,max=72" example:"gochujang123"`
	Name             string `json:"name" validate:"required,max=100" example:"Kim Minji"`
	Phone            string `json:"phone" validate:"omitempty,max=20" example:"010-1234-5678"`
	Role             string `json:"role" validate:"omitempty,oneof=BUYER SELLER" example:"BUYER"`
	Language         string `json:"language" validate:"omitempty,oneof=ko-KR en-US" example:"ko-KR"`
	MarketingConsent bool   `json:"marketing_consent"`
} // @name RegisterRequest

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"minji@spicyjump.io"`
	Password string `json:"password" validate:"required" example:"gochujang123"`
} // @name LoginRequest

// UpdateProfileRequest is a partial profile update; omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100" example:"Kim Minji"`
	Phone    *string `json:"phone" validate:"omitempty,max=20" example:"010-1234-5678"`
	Language *string `json:"language" validate:"omitempty,oneof=ko-KR en-US" example:"en-US"`
} // @name UpdateProfileRequest

// ChangePasswordRequest is the request body for PUT /auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
} // @name ChangePasswordRequest

// UserResponse is the public view of an account.
type UserResponse struct {
	ID               uuid.UUID  `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Email            string     `json:"email" example:"minji@spicyjump.io"`
	Name             string     `json:"name" example:"Kim Minji"`
	Phone            string     `json:"phone,omitempty" example:"010-1234-5678"`
	Role             string     `json:"role" example:"BUYER"`
	Status           string     `json:"status" example:"ACTIVE"`
	Language         string     `json:"language" example:"ko-KR"`
	MarketingConsent bool       `json:"marketing_consent"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at" example:"2024-01-15T10:30:00Z"`
} // @name UserResponse

// LoginResponse carries a token pair and the logged-in user.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type" example:"Bearer"`
	ExpiresIn    int64        `json:"expires_in" example:"3600"`
	User         UserResponse `json:"user"`
} // @name LoginResponse

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"logged out"`
} // @name MessageResponse

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	svc *appsvcs.Services
}

func NewAuthHandler(svc *appsvcs.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register creates an account.
//
//	@Summary		Register
//	@Description	Creates a BUYER or SELLER account. ADMIN accounts cannot self-register.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		409		{object}	httpx.ErrorBody	"AUTH001"
//	@Failure		422		{object}	httpx.ErrorBody
//	@Failure		429		{object}	httpx.ErrorBody
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RegisterRequest](w, r)
	if !ok {
		return
	}

	u, err := h.svc.Auth.Register(r.Context(), models.NewUserParams{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		Phone:            req.Phone,
		Role:             models.Role(req.Role),
		Language:         models.Language(req.Language),
		MarketingConsent: req.MarketingConsent,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ToUserResponse(u))
}

// Login issues a token pair.
//
//	@Summary	Login
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Credentials"
//	@Success	200		{object}	LoginResponse
//	@Failure	401		{object}	httpx.ErrorBody	"AUTH002"
//	@Failure	403		{object}	httpx.ErrorBody	"AUTH003, AUTH004"
//	@Failure	429		{object}	httpx.ErrorBody
//	@Router		/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}
	sess, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toLoginResponse(sess))
}

// Refresh exchanges the Refresh-Token header for a new pair.
//
//	@Summary	Refresh tokens
//	@Tags		auth
//	@Produce	json
//	@Param		Refresh-Token	header		string	true	"Refresh token"
//	@Success	200				{object}	LoginResponse
//	@Failure	401				{object}	httpx.ErrorBody	"AUTH006"
//	@Failure	403				{object}	httpx.ErrorBody	"AUTH007"
//	@Router		/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(RefreshTokenHeader)
	if token == "" {
		httpx.JSONErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", "Refresh-Token header is required")
		return
	}
	sess, err := h.svc.Auth.Refresh(r.Context(), token)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toLoginResponse(sess))
}

// Logout revokes the bearer token and the optional Refresh-Token header.
//
//	@Summary	Logout
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Param		Refresh-Token	header		string	false	"Refresh token to revoke"
//	@Success	200				{object}	MessageResponse
//	@Failure	401				{object}	httpx.ErrorBody	"SECURITY002"
//	@Router		/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if err := h.svc.Auth.Logout(r.Context(), p.UserID, auth.AccessTokenFromCtx(r.Context()), r.Header.Get(RefreshTokenHeader)); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// GetProfile returns the caller's account.
//
//	@Summary	Get profile
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	UserResponse
//	@Failure	401	{object}	httpx.ErrorBody	"SECURITY002"
//	@Failure	404	{object}	httpx.ErrorBody	"AUTH005"
//	@Router		/auth/profile [get]
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	u, err := h.svc.Auth.Profile(r.Context(), p.UserID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToUserResponse(u))
}

// UpdateProfile changes name, phone or language.
//
//	@Summary	Update profile
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		UpdateProfileRequest	true	"Fields to change"
//	@Success	200		{object}	UserResponse
//	@Failure	401		{object}	httpx.ErrorBody
//	@Failure	404		{object}	httpx.ErrorBody	"AUTH005"
//	@Failure	422		{object}	httpx.ErrorBody
//	@Router		/auth/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateProfileRequest](w, r)
	if !ok {
		return
	}
	upd := models.ProfileUpdate{Name: req.Name, Phone: req.Phone}
	if req.Language != nil {
		lang := models.Language(*req.Language)
		upd.Language = &lang
	}
	u, err := h.svc.Auth.UpdateProfile(r.Context(), p.UserID, upd)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToUserResponse(u))
}

// ChangePassword replaces the caller's password.
//
//	@Summary	Change password
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		ChangePasswordRequest	true	"Current and new password"
//	@Success	200		{object}	MessageResponse
//	@Failure	401		{object}	httpx.ErrorBody	"AUTH002"
//	@Failure	422		{object}	httpx.ErrorBody
//	@Router		/auth/password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ChangePasswordRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.Auth.ChangePassword(r.Context(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "password changed"})
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Phone:            u.Phone,
		Role:             string(u.Role),
		Status:           string(u.Status),
		Language:         string(u.Language),
		MarketingConsent: u.MarketingConsent,
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
	}
}

func toLoginResponse(s *appsvcs.Session) LoginResponse {
	return LoginResponse{
		AccessToken:  s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
		TokenType:    s.Tokens.TokenType,
		ExpiresIn:    s.Tokens.ExpiresIn,
		User:         ToUserResponse(s.User),
	}
}
