package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/config"
	"github.com/dmonteiro/campus-parking/internal/database"
	"github.com/dmonteiro/campus-parking/internal/handler"
	"github.com/dmonteiro/campus-parking/internal/middleware"
	"github.com/dmonteiro/campus-parking/internal/queue"
	"github.com/dmonteiro/campus-parking/internal/repository"
	"github.com/dmonteiro/campus-parking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	studentRepo := repository.NewStudentRepo(db)
	facultyRepo := repository.NewFacultyRepo(db)
	vehicleRepo := repository.NewVehicleRepo(db)
	spotRepo := repository.NewSpotRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	registryHandler := handler.NewRegistryHandler(studentRepo, facultyRepo, vehicleRepo, spotRepo)
	parkingHandler := handler.NewParkingHandler(sessionRepo, vehicleRepo, spotRepo)
	userHandler := handler.NewUserHandler(cfg, userRepo)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterRegistry(e, registryHandler, cfg.JWTSecret)
	router.RegisterParking(e, parkingHandler, cfg.JWTSecret)
	router.RegisterUsers(e, userHandler, cfg.JWTSecret)

	// Background consumer writing parking events to logs/parking.log.
	go func() {
		if err := queue.StartParkingConsumer(); err != nil {
			log.Printf("parking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
