package domain

import (
	"github.com/golang-jwt/jwt/v4"
)

type LoginRequest struct {
	Username string `json:"username" valid:"required~Username is required"`
	Password string `json:"password" valid:"required~Password is required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type Claims struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TeacherID int    `json:"teacher_id"`
	jwt.RegisteredClaims
}
