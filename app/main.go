package main

import (
	"os"
	"os/signal"
	"sync"
	"time"

	"presensi/config"
	"presensi/services/attendance/delivery"
	"presensi/services/attendance/notifier"
	"presensi/services/attendance/repository"
	"presensi/services/attendance/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger
var wg sync.WaitGroup

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment")
	}

	log = config.GetLogrusInstance()

	startHTTP()
}

func startHTTP() {
	log.Info("Starting HTTP")
	app := fiber.New(config.GetFiberConfig())

	// CORS Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	db, err := config.BootDB()
	if err != nil {
		log.Fatalf("Failed to boot DB: %v", err)
		return
	}

	clock, err := config.NewSchoolClock()
	if err != nil {
		log.Fatalf("Failed to load school timezone: %v", err)
		return
	}

	store := repository.NewStore(db)
	events := notifier.NewLogPublisher(log)

	attendanceUC := usecase.NewAttendanceUseCase(store, clock, events, log, 10*time.Second)
	reconcileUC := usecase.NewReconcileUseCase(store, clock, log, 10*time.Second)

	delivery.NewAuthHandler(app, store)
	delivery.NewAttendanceHandler(app, attendanceUC)
	delivery.NewAdminHandler(app, store, reconcileUC, clock)

	scheduler := usecase.NewScheduler(store, clock, events, reconcileUC, log, config.GetSweepTime())
	scheduler.Start()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infof("Starting HTTP server for Public on port %s", config.GetFiberHttpPort())
		if err := app.Listen(config.GetFiberListenAddress()); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, os.Kill)

	<-signalChan

	log.Info("Shutting down the server...")

	scheduler.Stop()

	if err := app.Shutdown(); err != nil {
		log.Errorf("Error during server shutdown: %v", err)
	}

	wg.Wait()
	log.Info("Server shut down gracefully")
}
