package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/fayiz2005/Kaze/internal/service"
	"github.com/fayiz2005/Kaze/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// toHTTPError сопоставляет ошибки сервиса со статусом и телом ответа.
// Всё неизвестное уходит как 500 без подробностей.
func toHTTPError(err error) (int, dto.BaseError) {
	var stockErr *service.StockError
	var refErr *service.ReferenceError

	switch {
	case errors.As(err, &stockErr):
		return http.StatusBadRequest, dto.NewInsufficientStockError(stockErr.Error())
	case errors.As(err, &refErr):
		return http.StatusBadRequest, dto.NewReferenceError(refErr.Error())
	case errors.Is(err, service.ErrStockConflict):
		return http.StatusConflict, dto.NewStockConflictError(err.Error())
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUnsupportedPayment):
		return http.StatusBadRequest, dto.NewValidationError(err.Error(), nil)
	case errors.Is(err, service.ErrInvalidOrExpiredCode):
		return http.StatusBadRequest, dto.BaseError{Code: "invalid_code", Message: err.Error()}
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrInUse):
		return http.StatusConflict, dto.NewConflictError(err.Error())
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, dto.NewNotFoundError("resource not found")
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewUnauthorizedError(err.Error())
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, dto.NewForbiddenError("forbidden")
	case errors.Is(err, service.ErrTooManyRequests):
		return http.StatusTooManyRequests, dto.NewRateLimitedError("too many requests, try again later")
	default:
		return http.StatusInternalServerError, dto.NewInternalError("")
	}
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status, body := toHTTPError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("op", op), zap.Error(err))
	} else {
		h.log.Warn("failed", zap.String("op", op), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}

// badRequest отвечает 400 с разбором ошибок валидатора по полям.
func (h *Handler) badRequest(c *gin.Context, op string, err error) {
	h.log.Warn("invalid request", zap.String("op", op), zap.Error(err))

	var fields []dto.FieldError
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields = make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, dto.FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
				Tag:     fe.Tag(),
			})
		}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", fields))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid uuid"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt", "gte":
		return "must be " + fe.Tag() + " " + fe.Param()
	default:
		return "is invalid"
	}
}

var registerValidation sync.Once

// useJSONFieldNames: в ошибках валидации поле называется как в JSON, а не как в Go.
func useJSONFieldNames() {
	registerValidation.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}
