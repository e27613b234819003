package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/croptrack/croptrack/internal/container"
	handlers "github.com/croptrack/croptrack/internal/interface/http"
	"github.com/croptrack/croptrack/internal/interface/middleware"
	"github.com/croptrack/croptrack/pkg/helpers"
)

// UserModule wires the account routes.
// Public: GET /, GET|POST /login, GET|POST /register, POST /logout.
// Login and register also stay reachable for authenticated users, matching
// the session state machine (no restriction enforced).

type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  *helpers.TokenManager
}

func NewUserModule(h *handlers.UserHandler, tokens *helpers.TokenManager) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// 10 login and 5 register attempts per minute per IP
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/", m.Handler.Home)
	rg.GET("/login", m.Handler.LoginForm)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.GET("/register", m.Handler.RegisterForm)
	rg.POST("/register", registerLimiter, m.Handler.Register)

	// Logout stays public so that it is idempotent for expired sessions
	rg.POST("/logout", m.Handler.Logout)
}
