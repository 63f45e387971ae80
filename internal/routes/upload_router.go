package routes

import (
	"onboarding-system/internal/controllers"
	"onboarding-system/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Маршрут загрузки не закрыт JWT: правом на загрузку служит сам тикет.
func runUploadRouter(
	api *echo.Group,
	attachmentService services.AttachmentServiceInterface,
	logger *zap.Logger,
) {
	uploadController := controllers.NewUploadController(attachmentService, logger)

	api.PUT("/upload/:token", uploadController.Upload)
}
