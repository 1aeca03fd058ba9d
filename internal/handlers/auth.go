package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/dhruvrajsinh5757/sgpagri-sub001/internal/auth"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/middleware"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/services"
	appErrors "github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/errors"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/response"
)

// AuthHandler exposes registration, login and session lifecycle endpoints.
type AuthHandler struct {
	users    *services.UserService
	jwt      *iauth.JWTService
	sessions *iauth.SessionService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(db *gorm.DB, jwt *iauth.JWTService, sessions *iauth.SessionService) (*AuthHandler, error) {
	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{users: users, jwt: jwt, sessions: sessions}, nil
}

type registerPayload struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	AccountType string `json:"account_type" validate:"omitempty,oneof=farmer agro-business"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	Location    string `json:"location" validate:"omitempty,max=120"`
}

// Register creates a new account and opens its first session.
func (h *AuthHandler) Register(c *gin.Context) {
	var payload registerPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	user, err := h.users.Register(requestContext(c), services.RegisterInput{
		Name:        payload.Name,
		Email:       payload.Email,
		Password:    payload.Password,
		AccountType: payload.AccountType,
		Phone:       payload.Phone,
		Location:    payload.Location,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.issueTokens(c, http.StatusCreated, user)
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and issues a fresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload loginPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	user, err := h.users.Authenticate(requestContext(c), payload.Email, payload.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.issueTokens(c, http.StatusOK, user)
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh rotates a refresh token into a new token pair. The presented
// session is revoked so each refresh token is single-use.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var payload refreshPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	ctx := requestContext(c)

	session, err := h.sessions.Validate(ctx, payload.RefreshToken)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(ctx, session.UserID)
	if err != nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.Revoke(ctx, session.ID); err != nil {
		response.Error(c, err)
		return
	}

	h.issueTokens(c, http.StatusOK, user)
}

// Logout revokes the session carried by the access token.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.GetString(middleware.CtxSessionIDKey)
	if sessionID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.Revoke(requestContext(c), sessionID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me returns the authenticated account profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.users.Get(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

func (h *AuthHandler) issueTokens(c *gin.Context, status int, user *models.User) {
	issued, err := h.sessions.Create(requestContext(c), user.ID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:      user.ID,
		SessionID:   issued.Session.ID,
		AccountType: user.AccountType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, status, gin.H{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": issued.RefreshToken,
	})
}
