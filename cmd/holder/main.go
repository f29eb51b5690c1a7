package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/quickauth/internal/buildinfo"
	"github.com/dmitrijs2005/quickauth/internal/holder"
	"github.com/dmitrijs2005/quickauth/internal/holder/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := holder.NewApp(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
