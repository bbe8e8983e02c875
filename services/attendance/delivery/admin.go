package delivery

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/gofiber/fiber/v2"

	"presensi/config"
	"presensi/domain"
	"presensi/middleware"
)

type adminHandler struct {
	store      domain.Store
	reconciler domain.ReconcileUseCase
	clock      domain.Clock
}

func NewAdminHandler(app *fiber.App, store domain.Store, reconciler domain.ReconcileUseCase, clock domain.Clock) {
	handler := &adminHandler{
		store:      store,
		reconciler: reconciler,
		clock:      clock,
	}

	route := app.Group("/admin", middleware.AuthRequired(), middleware.RoleRequired("admin"))
	route.Post("/reconcile", handler.TriggerReconcile)

	route.Get("/schedules", handler.ListSchedules)
	route.Post("/schedules", handler.CreateSchedule)
	route.Put("/schedules/:id", handler.UpdateSchedule)
	route.Delete("/schedules/:id", handler.DeleteSchedule)

	route.Get("/working-hours", handler.ListWorkingHours)
	route.Post("/working-hours", handler.CreateWorkingHour)
	route.Delete("/working-hours/:id", handler.DeleteWorkingHour)

	route.Get("/geofence", handler.GetGeofence)
	route.Post("/geofence", handler.SaveGeofence)
	route.Post("/geofence/:id/activate", handler.ActivateGeofence)

	route.Post("/holidays", handler.CreateHoliday)
	route.Delete("/holidays/:id", handler.DeleteHoliday)

	route.Get("/classes", handler.ListClasses)
	route.Get("/classes/:id/roster", handler.ClassRoster)
	route.Post("/classes/:id/rotate-qr", handler.RotateClassToken)

	route.Post("/sessions/:id/substitute/:teacherId", handler.AssignSubstitute)
}

// TriggerReconcile runs the sweep on demand for an arbitrary date,
// defaulting to yesterday like the nightly job.
func (ad *adminHandler) TriggerReconcile(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	var req struct {
		Date string `json:"date"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "TriggerReconcile")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}

	date := ad.clock.Today().AddDate(0, 0, -1)
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, ad.clock.Now().Location())
		if err != nil {
			config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "TriggerReconcile")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "date must be YYYY-MM-DD",
			})
		}
		date = parsed
	}

	result, err := ad.reconciler.Run(c.Context(), date)
	if err != nil {
		return respondError(c, &userToken.Username, "TriggerReconcile", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "TriggerReconcile")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

func (ad *adminHandler) ListSchedules(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	filter := domain.ScheduleFilter{
		TeacherID: c.QueryInt("teacher_id"),
		ClassID:   c.QueryInt("class_id"),
		DayOfWeek: c.QueryInt("day_of_week"),
	}

	schedules, err := ad.store.Schedules().List(c.Context(), filter)
	if err != nil {
		return respondError(c, &userToken.Username, "ListSchedules", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "ListSchedules")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    schedules,
	})
}

func (ad *adminHandler) CreateSchedule(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	var schedule domain.Schedule
	if err := c.BodyParser(&schedule); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CreateSchedule")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&schedule); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CreateSchedule")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if err := validateClockPair(schedule.StartTime, schedule.EndTime); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CreateSchedule")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	schedule.IsActive = true

	if err := ad.store.Schedules().Create(c.Context(), &schedule); err != nil {
		return respondError(c, &userToken.Username, "CreateSchedule", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusCreated, "CreateSchedule")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    schedule,
	})
}

func (ad *adminHandler) UpdateSchedule(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "UpdateSchedule")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid schedule id",
		})
	}

	existing, err := ad.store.Schedules().FindByID(c.Context(), id)
	if err != nil {
		return respondError(c, &userToken.Username, "UpdateSchedule", err)
	}

	var payload domain.Schedule
	if err := c.BodyParser(&payload); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "UpdateSchedule")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&payload); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "UpdateSchedule")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if err := validateClockPair(payload.StartTime, payload.EndTime); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "UpdateSchedule")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	payload.ScheduleID = existing.ScheduleID
	payload.CreatedAt = existing.CreatedAt
	if err := ad.store.Schedules().Update(c.Context(), &payload); err != nil {
		return respondError(c, &userToken.Username, "UpdateSchedule", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "UpdateSchedule")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    payload,
	})
}

func (ad *adminHandler) DeleteSchedule(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "DeleteSchedule")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid schedule id",
		})
	}

	if err := ad.store.Schedules().Delete(c.Context(), id); err != nil {
		return respondError(c, &userToken.Username, "DeleteSchedule", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "DeleteSchedule")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "schedule deleted",
	})
}

func (ad *adminHandler) ListWorkingHours(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	rows, err := ad.store.WorkingHours().List(c.Context(), c.QueryInt("teacher_id"))
	if err != nil {
		return respondError(c, &userToken.Username, "ListWorkingHours", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "ListWorkingHours")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}

func (ad *adminHandler) CreateWorkingHour(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	var wh domain.WorkingHour
	if err := c.BodyParser(&wh); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CreateWorkingHour")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&wh); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CreateWorkingHour")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if err := validateClockPair(wh.StartTime, wh.EndTime); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CreateWorkingHour")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if err := ad.store.WorkingHours().Create(c.Context(), &wh); err != nil {
		return respondError(c, &userToken.Username, "CreateWorkingHour", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusCreated, "CreateWorkingHour")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    wh,
	})
}

func (ad *adminHandler) DeleteWorkingHour(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "DeleteWorkingHour")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid working hour id",
		})
	}

	if err := ad.store.WorkingHours().Delete(c.Context(), id); err != nil {
		return respondError(c, &userToken.Username, "DeleteWorkingHour", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "DeleteWorkingHour")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "working hour deleted",
	})
}

func (ad *adminHandler) GetGeofence(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	fence, err := ad.store.Geofences().FindActive(c.Context())
	if err != nil {
		return respondError(c, &userToken.Username, "GetGeofence", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "GetGeofence")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fence,
	})
}

func (ad *adminHandler) SaveGeofence(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	var fence domain.Geofence
	if err := c.BodyParser(&fence); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "SaveGeofence")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&fence); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "SaveGeofence")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if err := ad.store.Geofences().Save(c.Context(), &fence); err != nil {
		return respondError(c, &userToken.Username, "SaveGeofence", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusCreated, "SaveGeofence")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fence,
	})
}

func (ad *adminHandler) ActivateGeofence(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "ActivateGeofence")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid geofence id",
		})
	}

	if err := ad.store.Geofences().Activate(c.Context(), id); err != nil {
		return respondError(c, &userToken.Username, "ActivateGeofence", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "ActivateGeofence")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "geofence activated",
	})
}

func (ad *adminHandler) CreateHoliday(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	var payload struct {
		Date    string `json:"date" valid:"required~Date is required"`
		Reason  string `json:"reason" valid:"required~Reason is required"`
		Type    string `json:"type" valid:"required~Type is required"`
		ClassID *int   `json:"class_id"`
	}
	if err := c.BodyParser(&payload); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CreateHoliday")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&payload); err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CreateHoliday")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	date, err := time.ParseInLocation("2006-01-02", payload.Date, ad.clock.Now().Location())
	if err != nil {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "CreateHoliday")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "date must be YYYY-MM-DD",
		})
	}

	holiday := domain.HolidayEvent{
		Date:    date,
		Reason:  payload.Reason,
		Type:    payload.Type,
		ClassID: payload.ClassID,
	}
	if err := ad.store.Holidays().Create(c.Context(), &holiday); err != nil {
		return respondError(c, &userToken.Username, "CreateHoliday", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusCreated, "CreateHoliday")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    holiday,
	})
}

func (ad *adminHandler) DeleteHoliday(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "DeleteHoliday")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid holiday id",
		})
	}

	if err := ad.store.Holidays().Delete(c.Context(), id); err != nil {
		return respondError(c, &userToken.Username, "DeleteHoliday", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "DeleteHoliday")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "holiday deleted",
	})
}

func (ad *adminHandler) ListClasses(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	classes, err := ad.store.Classes().List(c.Context())
	if err != nil {
		return respondError(c, &userToken.Username, "ListClasses", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "ListClasses")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    classes,
	})
}

func (ad *adminHandler) ClassRoster(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "ClassRoster")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid class id",
		})
	}

	students, err := ad.store.Classes().Roster(c.Context(), id)
	if err != nil {
		return respondError(c, &userToken.Username, "ClassRoster", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "ClassRoster")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    students,
	})
}

// RotateClassToken replaces the class's QR secret so previously issued
// payloads stop matching. The response carries the raw payload for the
// admin UI to render; image generation is the client's concern.
func (ad *adminHandler) RotateClassToken(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "RotateClassToken")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid class id",
		})
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return respondError(c, &userToken.Username, "RotateClassToken", err)
	}
	token := hex.EncodeToString(buf)

	if err := ad.store.Classes().UpdateQRToken(c.Context(), id, token); err != nil {
		return respondError(c, &userToken.Username, "RotateClassToken", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "RotateClassToken")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"class_id": id,
			"payload": domain.QRPayload{
				Type:    domain.QRTypeClassSession,
				ClassID: id,
				Token:   token,
			},
		},
	})
}

func (ad *adminHandler) AssignSubstitute(c *fiber.Ctx) error {
	userToken := c.Locals("user").(*domain.Claims)

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "AssignSubstitute")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid session id",
		})
	}
	teacherID, err := c.ParamsInt("teacherId")
	if err != nil || teacherID <= 0 {
		config.PrintLogInfo(&userToken.Username, fiber.StatusBadRequest, "AssignSubstitute")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid teacher id",
		})
	}

	if err := ad.store.Sessions().AssignSubstitute(c.Context(), sessionID, teacherID); err != nil {
		return respondError(c, &userToken.Username, "AssignSubstitute", err)
	}

	config.PrintLogInfo(&userToken.Username, fiber.StatusOK, "AssignSubstitute")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "substitute assigned",
	})
}

func validateClockPair(start, end string) error {
	startH, startM, err := domain.ParseClock(start)
	if err != nil {
		return err
	}
	endH, endM, err := domain.ParseClock(end)
	if err != nil {
		return err
	}
	if endH*60+endM <= startH*60+startM {
		return fiber.NewError(fiber.StatusBadRequest, "end time must be after start time")
	}
	return nil
}
