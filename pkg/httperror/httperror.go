package httperror

import "github.com/gofiber/fiber/v2"

// Error is the envelope every handler failure is reported through.
// Code is a stable machine-readable identifier, Message is for humans,
// Details carries optional structured context.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func New(status int, code, message string, details any) *Error {
	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func BadRequest(code, message string, details any) *Error {
	return New(fiber.StatusBadRequest, code, message, details)
}

func Unauthorized(code, message string, details any) *Error {
	return New(fiber.StatusUnauthorized, code, message, details)
}

func Forbidden(code, message string, details any) *Error {
	return New(fiber.StatusForbidden, code, message, details)
}

func NotFound(code, message string, details any) *Error {
	return New(fiber.StatusNotFound, code, message, details)
}

func Conflict(code, message string, details any) *Error {
	return New(fiber.StatusConflict, code, message, details)
}

func InternalServerError(code, message string, details any) *Error {
	return New(fiber.StatusInternalServerError, code, message, details)
}

// NoContent signals a successful deletion; writeError turns it into a 204.
func NoContent(code, message string, details any) *Error {
	return New(fiber.StatusNoContent, code, message, details)
}
