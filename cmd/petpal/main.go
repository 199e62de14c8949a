package main

import (
	"context"
	"os"

	"github.com/petpalfinder/backend/internal/app"
)

func main() {
	ctx := context.Background()
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
