package main

import (
	"context"
	"log"

	"github.com/esgtools/esgkeeper/internal/cli"
	"github.com/esgtools/esgkeeper/internal/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
