package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/max-sakeco/xero-sync/internal/app"
	"github.com/max-sakeco/xero-sync/internal/config"
)

func main() {

	// .env is optional, real deployments configure via the environment
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	a.Run(ctx)

}
