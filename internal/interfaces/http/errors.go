package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/domain"
)

// errorMapping respuesta estable para cada error de dominio.
type errorMapping struct {
	target    error
	status    int
	code      string
	messageEn string
}

var errorMappings = []errorMapping{
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "insufficient stock"},
	{domain.ErrAlreadyRefunded, fiber.StatusConflict, "ALREADY_REFUNDED", "sale already refunded"},
	{domain.ErrAlreadyReceived, fiber.StatusConflict, "ALREADY_RECEIVED", "purchase order already received"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "resource already exists"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflict with the current state"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "resource not found"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "invalid input"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "access denied"},
}

// writeError traduce err a status + ErrorResponse. Los errores de dominio conservan su
// mensaje (incluye el contexto agregado con %w); el resto responde INTERNAL sin detalles.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{
				Code:      m.code,
				Message:   err.Error(),
				MessageEn: m.messageEn,
			})
		}
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Code:      "INTERNAL",
		Message:   "error interno, intente más tarde",
		MessageEn: "internal error, try again later",
	})
}

func badRequest(c *fiber.Ctx, code, message, messageEn string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message, MessageEn: messageEn})
}

func invalidBody(c *fiber.Ctx) error {
	return badRequest(c, "INVALID_BODY", "cuerpo inválido", "invalid request body")
}
