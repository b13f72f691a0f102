package main

import (
	"context"
	"log"

	"voicenotes-be/internal/bootstrap"
	"voicenotes-be/internal/config"
	"voicenotes-be/internal/server"
	"voicenotes-be/internal/tracer"
	"voicenotes-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	// Note-event consumer feeds the websocket hub
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
