package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/croptrack/croptrack/internal/container"
	handlers "github.com/croptrack/croptrack/internal/interface/http"
	"github.com/croptrack/croptrack/internal/interface/middleware"
	"github.com/croptrack/croptrack/pkg/helpers"
)

// CropModule wires the crop routes. Everything here requires an
// authenticated session.

type CropModule struct {
	Handler *handlers.CropHandler
	Tokens  *helpers.TokenManager
}

func NewCropModule(h *handlers.CropHandler, tokens *helpers.TokenManager) *CropModule {
	return &CropModule{Handler: h, Tokens: tokens}
}

func (m *CropModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.Tokens))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/dashboard", m.Handler.Dashboard)
		auth.POST("/add_crop", m.Handler.AddCrop)
		auth.GET("/statistic", m.Handler.Statistic)
	}
}
