package main

import (
	"context"
	"log"

	"qna-chat-be/internal/bootstrap"
	"qna-chat-be/internal/config"
	"qna-chat-be/internal/server"
	"qna-chat-be/internal/tracer"
	"qna-chat-be/pkg/database"
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
	// Note: In a larger app, we might use an errgroup or supervisor here
	ctx := context.Background()

	if err := container.ConsumerService.Start(); err != nil {
		log.Panicf("Unable to start answer worker: %v", err)
	}
	if err := container.NotifierService.Start(); err != nil {
		log.Panicf("Unable to start websocket notifier: %v", err)
	}
	if err := container.IngestService.Consume(ctx); err != nil {
		log.Panicf("Unable to start ingest worker: %v", err)
	}
	go func() {
		log.Println("Background: Starting Watchdog Service...")
		container.WatchdogService.Run(ctx)
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
