package delivery

import (
	"github.com/asaskevich/govalidator"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"presensi/config"
	"presensi/domain"
	"presensi/middleware"
)

type authHandler struct {
	store domain.Store
}

func NewAuthHandler(app *fiber.App, store domain.Store) {
	handler := &authHandler{store: store}

	app.Post("/login", handler.Login)
}

func (ah *authHandler) Login(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		config.PrintLogInfo(&req.Username, fiber.StatusBadRequest, "Login")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
		})
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		config.PrintLogInfo(&req.Username, fiber.StatusBadRequest, "Login")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	user, err := ah.store.Users().FindByUsername(c.Context(), req.Username)
	if err != nil {
		config.PrintLogInfo(&req.Username, fiber.StatusUnauthorized, "Login")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "invalid credentials",
		})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		config.PrintLogInfo(&req.Username, fiber.StatusUnauthorized, "Login")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "invalid credentials",
		})
	}

	teacherID := 0
	if user.TeacherID != nil {
		teacherID = *user.TeacherID
	}
	token, err := middleware.GenerateJWT(user.UserID, user.Username, user.Role, teacherID)
	if err != nil {
		return respondError(c, &req.Username, "Login", err)
	}

	config.PrintLogInfo(&req.Username, fiber.StatusOK, "Login")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": domain.LoginResponse{
			Token: token,
			Role:  user.Role,
		},
	})
}
