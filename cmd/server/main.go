package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/openreach/cms-server/internal/server"
	"github.com/openreach/cms-server/internal/server/config"
)

func main() {
	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
