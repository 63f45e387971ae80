// controllers/upload_controller.go

package controllers

import (
	"net/http"
	"strconv"

	"onboarding-system/internal/services"
	apperrors "onboarding-system/pkg/errors"
	"onboarding-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UploadController принимает сырое тело запроса как байты файла.
// Доступ охраняется самим тикетом в пути, JWT здесь не требуется.
type UploadController struct {
	attachmentService services.AttachmentServiceInterface
	logger            *zap.Logger
}

func NewUploadController(attachmentService services.AttachmentServiceInterface, logger *zap.Logger) *UploadController {
	return &UploadController{
		attachmentService: attachmentService,
		logger:            logger,
	}
}

func (ctrl *UploadController) Upload(c echo.Context) error {
	reqCtx := c.Request().Context()
	token := c.Param("token")

	contentLength := int64(-1)
	if raw := c.Request().Header.Get(echo.HeaderContentLength); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return utils.ErrorResponse(c,
				apperrors.NewHttpError(
					http.StatusBadRequest,
					apperrors.ErrInvalidContentLength.Error(),
					apperrors.ErrInvalidContentLength,
					map[string]interface{}{"contentLength": raw},
				),
				ctrl.logger,
			)
		}
		contentLength = parsed
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)

	_, err := ctrl.attachmentService.ReceiveUpload(reqCtx, token, c.Request().Body, contentType, contentLength)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	// Успех сигнализируется только статусом, тело ответа пустое.
	return c.NoContent(http.StatusNoContent)
}
