package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// newValidator usa el nombre del tag json (o query) en los errores por campo.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return v
}

// validationError arma la respuesta 400 con el detalle por campo.
func validationError(c *fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			resp.Details = append(resp.Details, dto.FieldDetail{Field: e.Field(), Message: validationMessage(e)})
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "campo obligatorio"
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "min", "gte":
		return "debe ser al menos " + e.Param()
	case "max", "lte":
		if e.Kind() == reflect.String {
			return "máximo " + e.Param() + " caracteres"
		}
		return "debe ser como máximo " + e.Param()
	case "gt":
		return "debe ser mayor que " + e.Param()
	case "ne":
		return "no puede ser " + e.Param()
	default:
		return "valor inválido"
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// writeError traduce errores de dominio a HTTP. El mensaje de stock insuficiente se muestra tal cual.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var invalid *domain.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: err.Error(),
			Details: []dto.FieldDetail{{Field: invalid.Field, Message: invalid.Reason}},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto o recurso no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrMultipleSingletons):
		log.Error().Err(err).Msg("configuración de stock duplicada")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SETTINGS_INVARIANT", Message: err.Error()})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
