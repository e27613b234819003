package router

import (
	"github.com/croptrack/croptrack/internal/application"
	"github.com/croptrack/croptrack/internal/container"
	pginfra "github.com/croptrack/croptrack/internal/infrastructure/postgres"
	handlers "github.com/croptrack/croptrack/internal/interface/http"
	"github.com/croptrack/croptrack/internal/router/modules"
)

func buildUserModule() *modules.UserModule {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	service := application.NewUserService(
		repo,
		container.GetTokens(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		container.GetConfig().MailSendEnabled,
	)

	handler := handlers.NewUserHandler(
		service,
		container.GetTokens(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetConfig().CookieDomain,
		container.GetConfig().CookieSecure,
	)

	return modules.NewUserModule(handler, container.GetTokens())
}

func buildCropModule() *modules.CropModule {
	repo := pginfra.NewCropRepository(container.GetPGPool())
	service := application.NewCropService(repo, container.GetLogger())
	handler := handlers.NewCropHandler(service, container.GetLogger())
	return modules.NewCropModule(handler, container.GetTokens())
}

// InitModules initializes all application modules and registers them with
// the router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildUserModule())
	r.Add(buildCropModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
