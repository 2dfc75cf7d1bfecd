package main

import (
	"context"
	"log"

	"codeframe-be/internal/bootstrap"
	"codeframe-be/internal/config"
	"codeframe-be/internal/server"
	"codeframe-be/internal/tracer"
	"codeframe-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Codeframe Worker...")
		if err := container.WorkerService.Start(); err != nil {
			log.Printf("Background Worker Error: %v", err)
		}
	}()
	go func() {
		log.Println("Background: Starting Progress Listener...")
		if err := container.ProgressListener.Listen(context.Background()); err != nil {
			log.Printf("Background Progress Listener Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
