package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"onboarding-system/internal/dto"
	"onboarding-system/internal/entities"
	apperrors "onboarding-system/pkg/errors"
	"onboarding-system/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubAttachmentService подменяет сервис загрузки в тестах контроллеров.
type stubAttachmentService struct {
	receiveErr    error
	receivedBody  string
	receivedToken string
	issueHandle   *dto.UploadHandleDTO
}

func (s *stubAttachmentService) IssueUpload(_ context.Context, _ dto.IssueUploadDTO) (*dto.UploadHandleDTO, error) {
	return s.issueHandle, nil
}

func (s *stubAttachmentService) ReceiveUpload(_ context.Context, token string, body io.Reader, _ string, _ int64) (*dto.AttachmentResponseDTO, error) {
	s.receivedToken = token
	if body != nil {
		data, _ := io.ReadAll(body)
		s.receivedBody = string(data)
	}
	if s.receiveErr != nil {
		return nil, s.receiveErr
	}
	return &dto.AttachmentResponseDTO{ID: "att-1"}, nil
}

func (s *stubAttachmentService) OpenAttachmentPath(_ context.Context, _ string) (*entities.Attachment, string, error) {
	return nil, "", apperrors.ErrAttachmentNotFound
}

func (s *stubAttachmentService) ListForSession(_ context.Context, _ string) ([]dto.AttachmentResponseDTO, error) {
	return nil, nil
}

func newUploadContext(t *testing.T, body string, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = utils.NewValidator(validator.New())

	req := httptest.NewRequest(http.MethodPut, "/api/upload/abc123", strings.NewReader(body))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/upload/:token")
	c.SetParamNames("token")
	c.SetParamValues("abc123")
	return c, rec
}

func TestUploadSuccessReturnsNoContent(t *testing.T) {
	stub := &stubAttachmentService{}
	ctrl := NewUploadController(stub, zap.NewNop())

	c, rec := newUploadContext(t, "сырые байты файла", nil)
	require.NoError(t, ctrl.Upload(c))

	assert.Equal(t, http.StatusNoContent, rec.Code, "успех сигнализируется только статусом")
	assert.Empty(t, rec.Body.String(), "тело ответа должно быть пустым")
	assert.Equal(t, "abc123", stub.receivedToken)
	assert.Equal(t, "сырые байты файла", stub.receivedBody)
}

func TestUploadRejectsMalformedContentLength(t *testing.T) {
	stub := &stubAttachmentService{}
	ctrl := NewUploadController(stub, zap.NewNop())

	for _, value := range []string{"abc", "-5"} {
		c, rec := newUploadContext(t, "данные", map[string]string{echo.HeaderContentLength: value})
		require.NoError(t, ctrl.Upload(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "значение %q должно давать 400", value)
		assert.Empty(t, stub.receivedToken, "до сервиса запрос дойти не должен")
	}
}

func TestUploadMapsTicketErrorToStatus(t *testing.T) {
	stub := &stubAttachmentService{
		receiveErr: apperrors.NewHttpError(http.StatusGone, apperrors.ErrInvalidOrExpiredTicket.Error(), apperrors.ErrInvalidOrExpiredTicket, nil),
	}
	ctrl := NewUploadController(stub, zap.NewNop())

	c, rec := newUploadContext(t, "данные", nil)
	require.NoError(t, ctrl.Upload(c))

	assert.Equal(t, http.StatusGone, rec.Code, "ошибка тикета должна отдаваться статусом 410")
	assert.Contains(t, rec.Body.String(), "тикет", "сообщение об ошибке уходит клиенту")
}
