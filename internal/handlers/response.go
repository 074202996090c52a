package handlers

import (
	"cinestream/internal/handlers/middleware"
	"cinestream/internal/types"
	"errors"
	"strconv"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

const (
	reasonSubtypeMismatch     = "subtype_mismatch"
	reasonProviderNotFound    = "provider_not_found"
	reasonProviderUnavailable = "provider_unavailable"
)

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// respondPage flattens a page so data stays the list and the counters sit
// next to it.
func respondPage[T any](c *fiber.Ctx, page types.Page[T]) error {
	return c.JSON(fiber.Map{
		"success":  true,
		"data":     page.Data,
		"page":     page.Page,
		"pageSize": page.PageSize,
		"total":    page.Total,
		"lastPage": page.LastPage,
	})
}

func fail(c *fiber.Ctx, status int, message string, extra fiber.Map) error {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	for key, value := range extra {
		body[key] = value
	}
	return c.Status(status).JSON(body)
}

// respondError maps an error kind to its status. Anything unrecognised is
// logged with the trace id and answered with a bare 500.
func respondError(c *fiber.Ctx, log logger.Logger, err error) error {
	if validationErr, ok := types.IsValidation(err); ok {
		return fail(c, fiber.StatusUnprocessableEntity, "Validation failed", fiber.Map{
			"errors": validationErr.Fields,
		})
	}

	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, types.ErrSubtypeMismatch):
		return fail(c, fiber.StatusNotFound, err.Error(), fiber.Map{"reason": reasonSubtypeMismatch})
	case errors.Is(err, types.ErrProviderNotFound):
		return fail(c, fiber.StatusNotFound, "Not available", fiber.Map{"reason": reasonProviderNotFound})
	case errors.Is(err, types.ErrProviderUnavailable):
		return fail(c, fiber.StatusNotFound, "Not available", fiber.Map{"reason": reasonProviderUnavailable})
	case errors.Is(err, types.ErrNotFound):
		return fail(c, fiber.StatusNotFound, err.Error(), nil)
	case errors.Is(err, types.ErrForbidden):
		return fail(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, types.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, "Authentication required", nil)
	case errors.Is(err, types.ErrConflict):
		return fail(c, fiber.StatusConflict, err.Error(), nil)
	case errors.As(err, &fiberErr):
		return fail(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.Er("unhandled request error", err, "traceID", middleware.GetTraceID(c), "path", c.Path())
	return fail(c, fiber.StatusInternalServerError, "Internal server error", nil)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, types.NewValidationError(param, "must be a positive id")
	}
	return uint(id), nil
}

func parsePagination(c *fiber.Ctx) types.Pagination {
	return types.Pagination{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 0),
	}
}
