package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/croptrack/croptrack/internal/application"
	"github.com/croptrack/croptrack/internal/interface/middleware"
	"github.com/croptrack/croptrack/pkg/helpers"
	"github.com/croptrack/croptrack/pkg/response"
	"github.com/croptrack/croptrack/pkg/validation"
)

const dashboardPath = "/dashboard"

type UserHandler struct {
	Svc     *application.UserService
	Tokens  *helpers.TokenManager
	RDB     *redis.Client
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.UserService, tokens *helpers.TokenManager, rdb *redis.Client, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Tokens: tokens, RDB: rdb, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type credentialsRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type registerRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Email    string `form:"email" binding:"omitempty,email"`
}

// Home GET / — redirect-only: dashboard when a session is active, login
// otherwise.
func (h *UserHandler) Home(c *gin.Context) {
	if _, ok := middleware.ResolveUserID(c, h.RDB, h.Tokens); ok {
		c.Redirect(http.StatusFound, dashboardPath)
		return
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// LoginForm GET /login — view rendering is out of scope, so this answers
// with the form contract.
func (h *UserHandler) LoginForm(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"fields": []string{"username", "password"}}, "log in", nil)
}

// Login POST /login — verifies credentials and establishes the session
// cookie. Unknown user and wrong password answer the same way.
func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid username or password", validation.ToDetails(err))
		return
	}

	u, token, exp, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid username or password", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}

	h.Cookies.SetSession(c, token, exp)
	response.Success(c, http.StatusOK, gin.H{"user_id": u.ID, "username": u.Username}, "login successful", gin.H{"redirect": dashboardPath, "expires_at": exp})
}

// RegisterForm GET /register
func (h *UserHandler) RegisterForm(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"fields": []string{"username", "password", "email"}}, "create an account", nil)
}

// Register POST /register — creates the account; the password is stored as
// a bcrypt hash only.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "all fields are required", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrDuplicateUsername):
			response.Error[any](c, http.StatusConflict, "username already taken", nil)
		case errors.Is(err, application.ErrValidation):
			response.Error[any](c, http.StatusBadRequest, "all fields are required", nil)
		default:
			h.Logger.WithError(err).Error("registration failed")
			response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user_id": u.ID, "username": u.Username}, "registration successful, you can now log in", gin.H{"redirect": middleware.LoginPath})
}

// Logout POST /logout — idempotent: works the same with or without an
// active session.
func (h *UserHandler) Logout(c *gin.Context) {
	if uid, ok := middleware.ResolveUserID(c, h.RDB, h.Tokens); ok {
		if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
			h.Logger.WithError(err).Warn("session record delete failed")
		}
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", gin.H{"redirect": middleware.LoginPath})
}
