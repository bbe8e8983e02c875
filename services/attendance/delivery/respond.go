package delivery

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"presensi/config"
	"presensi/domain"
)

// respondError maps the domain error taxonomy onto HTTP. Policy
// rejections carry their structured details so the client can
// self-correct; holidays are informational rather than hard errors;
// guard trips are conflicts carrying the blocking session.
func respondError(c *fiber.Ctx, username *string, handlerName string, err error) error {
	var policyErr *domain.PolicyError
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &conflictErr):
		config.PrintLogInfo(username, fiber.StatusConflict, handlerName)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":        false,
			"code":           conflictErr.Code,
			"message":        conflictErr.Message,
			"active_session": conflictErr.ActiveSession,
		})
	case errors.As(err, &policyErr):
		status := fiber.StatusUnprocessableEntity
		if policyErr.Code == domain.CodeHoliday {
			status = fiber.StatusOK
		}
		config.PrintLogInfo(username, status, handlerName)
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    policyErr.Code,
			"message": policyErr.Message,
			"details": policyErr.Details,
		})
	case errors.Is(err, domain.ErrNotFound):
		config.PrintLogInfo(username, fiber.StatusNotFound, handlerName)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "record not found",
		})
	case errors.Is(err, domain.ErrValidation):
		config.PrintLogInfo(username, fiber.StatusBadRequest, handlerName)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	default:
		config.PrintLogInfo(username, fiber.StatusInternalServerError, handlerName)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "internal error",
		})
	}
}
