package routes

import (
	"onboarding-system/internal/controllers"
	"onboarding-system/internal/services"
	"onboarding-system/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runAttachmentRouter(
	api *echo.Group,
	attachmentService services.AttachmentServiceInterface,
	authMW *middleware.AuthMiddleware,
	logger *zap.Logger,
) {
	attachmentController := controllers.NewAttachmentController(attachmentService, logger)

	api.POST("/attachments/upload-url", attachmentController.IssueUpload, authMW.Auth)
	api.GET("/attachments/:id/file", attachmentController.DownloadAttachment, authMW.Auth)
	api.GET("/sessions/:session_id/attachments", attachmentController.GetAttachmentsBySession, authMW.Auth)
}
