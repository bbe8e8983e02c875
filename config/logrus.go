package config

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logrusInstance *logrus.Logger

func GetLogrusInstance() *logrus.Logger {
	if logrusInstance == nil {
		logrusInstance = logrus.New()
		logrusInstance.SetFormatter(&logrus.JSONFormatter{})
	}
	return logrusInstance
}

// PrintLogInfo logs one request outcome with the acting user attached.
func PrintLogInfo(username *string, statusCode int, functionName string) {
	user := "Unknown"
	if username != nil {
		user = *username
	}

	entry := GetLogrusInstance().WithFields(logrus.Fields{
		"user":     user,
		"status":   statusCode,
		"handler":  functionName,
		"statusTx": http.StatusText(statusCode),
	})

	switch {
	case statusCode >= fiber.StatusInternalServerError:
		entry.Error("request failed")
	case statusCode >= fiber.StatusBadRequest:
		entry.Warn("request rejected")
	default:
		entry.Info("request handled")
	}
}
