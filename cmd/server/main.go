package main

import (
	"log"
	"net/http"
	"os"

	"freelancehub/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"freelancehub/internal/auth"
	"freelancehub/internal/cache"
	"freelancehub/internal/config"
	"freelancehub/internal/db"
	"freelancehub/internal/handler"
	"freelancehub/internal/model"
	"freelancehub/internal/repository"
	"freelancehub/internal/router"
	"freelancehub/internal/service"
)

// @title FreelanceHub API
// @version 1.0
// @description Freelance project marketplace API with JWT authentication.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		for _, table := range []interface{}{&model.Project{}, &model.User{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("tables dropped")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Project{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	projectService := service.NewProjectService(projectRepo, cacheClient)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg.CookieSecure)
	projectHandler := handler.NewProjectHandler(projectService)

	router.Register(e, cfg, tokenStore, authHandler, projectHandler)

	addr := ":" + cfg.ServerPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
