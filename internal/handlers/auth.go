package handlers

import (
	"errors"
	"net/http"

	"leafscan/internal/repository"
	"leafscan/internal/service"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username             string `json:"username" binding:"required"`
	Email                string `json:"email" binding:"required"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
}

// Login uses form fields for compatibility with OAuth2 password-style clients.
type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// tokenResponse is the shared success payload of register and login.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        any    `json:"user"`
}

const tokenTypeBearer = "bearer"

// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account payload"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Router       /register [post]
func (h *Handler) register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.services.Register(c.Request.Context(), service.RegisterInput{
		Username:             input.Username,
		Email:                input.Email,
		Password:             input.Password,
		PasswordConfirmation: input.PasswordConfirmation,
	})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		case errors.Is(err, service.ErrUsernameExists),
			errors.Is(err, service.ErrEmailExists),
			errors.Is(err, repository.ErrDuplicateUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, "failed to register user", "auth_register_failed", err, "username", input.Username)
		}
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: tokenTypeBearer, User: user})
}

// @Summary      Log in with username or email
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username or email"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  map[string]string
// @Router       /token [post]
func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("auth_login_rejected", "identifier", input.Username)
			}
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to log in", "auth_login_failed", err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: tokenTypeBearer, User: user})
}

// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *Handler) me(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		h.abortUnauthorized(c, "could not validate credentials")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":    u.ID.Hex(),
		"name":  u.DisplayName(),
		"email": u.Email,
	})
}
