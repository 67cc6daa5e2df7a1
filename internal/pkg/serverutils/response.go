package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"poultry-diagnose-be/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeUnavailable = "DEPENDENCY_UNAVAILABLE"
	CodeNotReady    = "KNOWLEDGE_NOT_READY"
	CodeInternal    = "INTERNAL_ERROR"
	CodeHTTP        = "HTTP_ERROR"

	unavailableMessage = "service temporarily unavailable, please retry later"
)

type Response[T any] struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{Success: true, Message: message, Data: data}
}

func ErrorResponse(code, message string) *Response[any] {
	return &Response[any]{Success: false, Code: code, Message: message}
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateRequest runs the struct tags of req and reports the first failures as a
// single ValidationError.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation("request.Validate", err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperror.Validation("request.Validate", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into JSON bodies.
// Dependency failures get a generic 503 that cannot be mistaken for a
// conversational reply.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		status, body := mapError(err)
		return ctx.Status(status).JSON(body)
	}
}

func mapError(err error) (int, *Response[any]) {
	switch {
	case apperror.IsValidation(err):
		return fiber.StatusBadRequest, ErrorResponse(CodeValidation, apperror.MessageOf(err))
	case apperror.IsUnavailable(err):
		return fiber.StatusServiceUnavailable, ErrorResponse(CodeUnavailable, unavailableMessage)
	case apperror.IsInconsistent(err):
		return fiber.StatusServiceUnavailable, ErrorResponse(CodeNotReady, unavailableMessage)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, ErrorResponse(CodeHTTP, fiberErr.Message)
	}
	return fiber.StatusInternalServerError, ErrorResponse(CodeInternal, "internal server error")
}
