package main

import (
	"context"
	"log"

	"github.com/ivanpetrenko/authgate/internal/server"
	"github.com/ivanpetrenko/authgate/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg, nil)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
