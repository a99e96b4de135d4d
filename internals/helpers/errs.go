package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Stable error codes surfaced to clients next to the human-readable message.
const (
	CodeBadRequest            = "BAD_REQUEST"
	CodeNotFound              = "NOT_FOUND"
	CodeInvalidState          = "INVALID_STATE"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeAmountMismatch        = "AMOUNT_MISMATCH"
	CodeCapacityExceeded      = "CAPACITY_EXCEEDED"
	CodeGatewayFailure        = "GATEWAY_FAILURE"
	CodeConfigurationError    = "CONFIGURATION_ERROR"
	CodeOrderCreationFailed   = "ORDER_CREATION_FAILED"
	CodeInvalidSelection      = "INVALID_SELECTION"
	CodePaymentApprovalFailed = "PAYMENT_APPROVAL_FAILED"
	CodePaymentCancelFailed   = "PAYMENT_CANCEL_FAILED"
)

// AppError is what services return; controllers render it via FromError.
// Returning it from inside db.Transaction aborts the transaction.
type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func ErrBadRequest(msg string) *AppError {
	return NewAppError(fiber.StatusBadRequest, CodeBadRequest, msg)
}

func ErrNotFound(msg string) *AppError {
	return NewAppError(fiber.StatusNotFound, CodeNotFound, msg)
}

func ErrInvalidState(msg string) *AppError {
	return NewAppError(fiber.StatusConflict, CodeInvalidState, msg)
}

func ErrUnauthorized(msg string) *AppError {
	return NewAppError(fiber.StatusForbidden, CodeUnauthorized, msg)
}

func ErrAmountMismatch(msg string) *AppError {
	return NewAppError(fiber.StatusBadRequest, CodeAmountMismatch, msg)
}

func ErrGatewayFailure(msg string) *AppError {
	return NewAppError(fiber.StatusBadGateway, CodeGatewayFailure, msg)
}

func ErrConfiguration(msg string) *AppError {
	return NewAppError(fiber.StatusInternalServerError, CodeConfigurationError, msg)
}

func ErrOrderCreationFailed(msg string) *AppError {
	return NewAppError(fiber.StatusInternalServerError, CodeOrderCreationFailed, msg)
}

func ErrInvalidSelection(msg string) *AppError {
	return NewAppError(fiber.StatusBadRequest, CodeInvalidSelection, msg)
}

func ErrPaymentApprovalFailed(msg string) *AppError {
	return NewAppError(fiber.StatusBadGateway, CodePaymentApprovalFailed, msg)
}

func ErrPaymentCancelFailed(msg string) *AppError {
	return NewAppError(fiber.StatusBadGateway, CodePaymentCancelFailed, msg)
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

// FromError turns a service error (usually *AppError, sometimes *fiber.Error
// out of a transaction) into a consistent JSON response.
func FromError(c *fiber.Ctx, err error) error {
	var ae *AppError
	if errors.As(err, &ae) {
		return ErrorWithCode(c, ae.Status, ae.Code, ae.Message)
	}
	if fe, ok := err.(*fiber.Error); ok {
		return Error(c, fe.Code, fe.Message)
	}
	return Error(c, fiber.StatusInternalServerError, err.Error())
}
