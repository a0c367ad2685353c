package main

import (
	"context"
	"log"

	"github.com/mori-tea/mori/internal/client/cli"
	"github.com/mori-tea/mori/internal/client/config"
)

func main() {
	c, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(c)
	if err != nil {
		log.Fatalf("error initializing app: %v", err)
	}

	app.Run(context.Background())
}
