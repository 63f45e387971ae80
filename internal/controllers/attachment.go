package controllers

import (
	"net/http"

	"onboarding-system/internal/dto"
	"onboarding-system/internal/services"
	apperrors "onboarding-system/pkg/errors"
	"onboarding-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AttachmentController struct {
	attachmentService services.AttachmentServiceInterface
	logger            *zap.Logger
}

func NewAttachmentController(attachmentService services.AttachmentServiceInterface, logger *zap.Logger) *AttachmentController {
	return &AttachmentController{
		attachmentService: attachmentService,
		logger:            logger,
	}
}

// IssueUpload выдаёт одноразовый тикет загрузки для сессии.
func (ctrl *AttachmentController) IssueUpload(c echo.Context) error {
	reqCtx := c.Request().Context()

	var payload dto.IssueUploadDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			ctrl.logger,
		)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	handle, err := ctrl.attachmentService.IssueUpload(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	return utils.SuccessResponse(c, handle, "Тикет загрузки успешно выдан", http.StatusCreated)
}

// GetAttachmentsBySession отдаёт список вложений сессии, свежие первыми.
func (ctrl *AttachmentController) GetAttachmentsBySession(c echo.Context) error {
	reqCtx := c.Request().Context()

	sessionID := c.Param("session_id")
	if sessionID == "" {
		return utils.ErrorResponse(c,
			apperrors.NewHttpError(http.StatusBadRequest, "Не указан идентификатор сессии", apperrors.ErrBadRequest, nil),
			ctrl.logger,
		)
	}

	list, err := ctrl.attachmentService.ListForSession(reqCtx, sessionID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	return utils.SuccessResponse(c, list, "Список вложений успешно получен", http.StatusOK)
}

// DownloadAttachment отдаёт содержимое закоммиченного файла.
func (ctrl *AttachmentController) DownloadAttachment(c echo.Context) error {
	reqCtx := c.Request().Context()

	attachment, path, err := ctrl.attachmentService.OpenAttachmentPath(reqCtx, c.Param("id"))
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	return c.Attachment(path, attachment.FileName)
}
