package errors

import "fmt"

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrEmptyAuthHeader      = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader    = fmt.Errorf("неверный формат заголовка авторизации")

	// Загрузка вложений
	ErrStorageUnavailable     = fmt.Errorf("файловое хранилище недоступно")
	ErrInvalidOrExpiredTicket = fmt.Errorf("тикет загрузки недействителен или просрочен")
	ErrAttachmentNotFound     = fmt.Errorf("вложение не найдено")
	ErrAttachmentFileMissing  = fmt.Errorf("файл вложения отсутствует на диске")
	ErrInvalidContentLength   = fmt.Errorf("недопустимое значение Content-Length")
	ErrAttachmentTooLarge     = fmt.Errorf("размер вложения превышает допустимый максимум")
	ErrAttachmentSizeExceeded = fmt.Errorf("размер вложения превышает заявленный при выдаче тикета")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// HttpError - ошибка с HTTP-кодом для слоя контроллеров.
// Message уходит клиенту, Err и Context остаются в логах.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: context,
	}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
