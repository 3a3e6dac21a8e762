package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodePermissionDenied  ErrorCode = "PERMISSION_DENIED"
	ErrCodeInvalidState      ErrorCode = "INVALID_STATE"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeDuplicate         ErrorCode = "DUPLICATE"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeEditWindow        ErrorCode = "EDIT_WINDOW_EXPIRED"
	ErrCodeUnavailable       ErrorCode = "UNAVAILABLE"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is позволяет сравнивать предопределённые ошибки через errors.Is.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Code == appErr.Code && e.Message == appErr.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodePermissionDenied, ErrCodeEditWindow:
		return http.StatusForbidden
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeInvalidState, ErrCodeInvalidTransition, ErrCodeDuplicate:
		return http.StatusConflict
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsPermissionDenied(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodePermissionDenied
}

func IsInvalidState(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && (appErr.Code == ErrCodeInvalidState || appErr.Code == ErrCodeInvalidTransition)
}

func IsDuplicate(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeDuplicate
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

// HTTPStatusOf возвращает подходящий HTTP статус для произвольной ошибки.
func HTTPStatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

var (
	ErrJobNotFound         = New(ErrCodeNotFound, "заказ не найден")
	ErrResponseNotFound    = New(ErrCodeNotFound, "отклик не найден")
	ErrAssignmentNotFound  = New(ErrCodeNotFound, "назначение не найдено")
	ErrTransactionNotFound = New(ErrCodeNotFound, "транзакция не найдена")
	ErrRatingNotFound      = New(ErrCodeNotFound, "оценка не найдена")
	ErrVoteNotFound        = New(ErrCodeNotFound, "голос не найден")
	ErrUserNotFound        = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized        = New(ErrCodeUnauthorized, "требуется авторизация")

	ErrPermissionDenied  = New(ErrCodePermissionDenied, "недостаточно прав")
	ErrEditWindowExpired = New(ErrCodeEditWindow, "окно редактирования оценки истекло")

	ErrInvalidState      = New(ErrCodeInvalidState, "операция недопустима в текущем статусе")
	ErrInvalidTransition = New(ErrCodeInvalidTransition, "недопустимый переход статуса")

	ErrDuplicateResponse = New(ErrCodeDuplicate, "вы уже откликнулись на этот заказ")
	ErrDuplicateRating   = New(ErrCodeDuplicate, "вы уже оценили это назначение")
	ErrDuplicateVote     = New(ErrCodeDuplicate, "вы уже отметили эту оценку полезной")

	ErrInvalidBid                = New(ErrCodeValidation, "ставка должна содержать положительную сумму")
	ErrMissingScore              = New(ErrCodeValidation, "нужна общая оценка или хотя бы один критерий")
	ErrNotParticipant            = New(ErrCodeValidation, "вы не участник этого назначения")
	ErrInvalidRatingRelationship = New(ErrCodeValidation, "тип оценки не соответствует ролям участников")
	ErrNoPriceDeterminable       = New(ErrCodeValidation, "невозможно определить сумму: у заказа нет цены или бюджета")

	ErrUnavailable = New(ErrCodeUnavailable, "хранилище временно недоступно, повторите запрос")
)
