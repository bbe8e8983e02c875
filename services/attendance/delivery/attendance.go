package delivery

import (
	"github.com/asaskevich/govalidator"
	"github.com/gofiber/fiber/v2"

	"presensi/config"
	"presensi/domain"
	"presensi/middleware"
)

type attendanceHandler struct {
	uc domain.AttendanceUseCase
}

func NewAttendanceHandler(app *fiber.App, useCase domain.AttendanceUseCase) {
	handler := &attendanceHandler{
		uc: useCase,
	}

	route := app.Group("/attendance", middleware.AuthRequired(), middleware.RoleRequired("teacher"))
	route.Post("/check-in", handler.CheckIn)
	route.Post("/check-out/:sessionId", handler.CheckOut)
	route.Get("/active-session", handler.ActiveSession)
	route.Post("/leave", handler.SubmitLeave)
	route.Post("/sessions/:sessionId/students", handler.MarkStudents)
}

func (ah *attendanceHandler) CheckIn(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	var req domain.CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CheckIn")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CheckIn")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	resp, err := ah.uc.CheckIn(c.Context(), userToken.TeacherID, &req)
	if err != nil {
		return respondError(c, &userToken.Username, "CheckIn", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "CheckIn")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "checked in",
		"data":    resp,
	})
}

func (ah *attendanceHandler) CheckOut(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	sessionID, err := c.ParamsInt("sessionId")
	if err != nil || sessionID <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CheckOut")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid session id",
		})
	}

	var req domain.CheckOutRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CheckOut")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}

	resp, err := ah.uc.CheckOut(c.Context(), userToken.TeacherID, sessionID, &req)
	if err != nil {
		return respondError(c, &userToken.Username, "CheckOut", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "CheckOut")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "checked out",
		"data":    resp,
	})
}

func (ah *attendanceHandler) ActiveSession(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	info, err := ah.uc.ActiveSession(c.Context(), userToken.TeacherID)
	if err != nil {
		return respondError(c, &userToken.Username, "ActiveSession", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "ActiveSession")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    info,
	})
}

func (ah *attendanceHandler) SubmitLeave(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	var req domain.LeaveRequest
	if err := c.BodyParser(&req); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "SubmitLeave")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "SubmitLeave")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	resp, err := ah.uc.SubmitLeave(c.Context(), userToken.TeacherID, &req)
	if err != nil {
		return respondError(c, &userToken.Username, "SubmitLeave", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "SubmitLeave")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "leave recorded",
		"data":    resp,
	})
}

func (ah *attendanceHandler) MarkStudents(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	sessionID, err := c.ParamsInt("sessionId")
	if err != nil || sessionID <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "MarkStudents")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid session id",
		})
	}

	var req domain.StudentMarkRequest
	if err := c.BodyParser(&req); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "MarkStudents")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}

	resp, err := ah.uc.MarkStudents(c.Context(), userToken.TeacherID, sessionID, &req)
	if err != nil {
		return respondError(c, &userToken.Username, "MarkStudents", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "MarkStudents")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "students marked",
		"data":    resp,
	})
}
