package main

import (
	"context"
	"flag"
	"log"

	"freelancehub/internal/cache"
	"freelancehub/internal/config"
	"freelancehub/internal/db"
	"freelancehub/internal/model"
	"freelancehub/internal/repository"
	"freelancehub/internal/service"
)

// Seeds the database with demo users and projects for local development.
func main() {
	reset := flag.Bool("reset", false, "drop and recreate tables before seeding")
	flag.Parse()

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if *reset {
		for _, table := range []interface{}{&model.Project{}, &model.User{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("drop table: %v", err)
			}
		}
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Project{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)

	// No tokens are issued during seeding, and a nil cache client is a no-op.
	var noCache *cache.Client
	authService := service.NewAuthService(userRepo, nil, nil)
	projectService := service.NewProjectService(projectRepo, noCache)

	ctx := context.Background()

	users := []struct {
		name, email, password string
	}{
		{"Ada Lovelace", "ada@example.com", "password123"},
		{"Grace Hopper", "grace@example.com", "password123"},
	}

	drafts := []service.CreateProjectInput{
		{
			Title:       "Marketplace landing page",
			Description: "Responsive landing page with project listings and search.",
			Budget:      1200,
			TechStack:   []string{"React", "Tailwind"},
		},
		{
			Title:       "Billing microservice",
			Description: "Invoice generation service with webhook notifications.",
			Budget:      4500,
			TechStack:   []string{"Go", "MySQL", "Redis"},
		},
		{
			Title:       "Mobile app prototype",
			Description: "Cross-platform prototype for client review, two screens.",
			Budget:      800,
			TechStack:   []string{"Flutter"},
		},
	}

	for i, u := range users {
		user, err := authService.Signup(ctx, u.name, u.email, u.password)
		if err != nil {
			if err == service.ErrUserAlreadyExists {
				log.Printf("user %s already exists, skipping", u.email)
				continue
			}
			log.Fatalf("seed user %s: %v", u.email, err)
		}

		draft := drafts[i%len(drafts)]
		if _, err := projectService.Create(ctx, user.ID, draft); err != nil {
			log.Fatalf("seed project for %s: %v", u.email, err)
		}
		log.Printf("seeded user %s with one project", u.email)
	}

	log.Println("seeding done")
}
