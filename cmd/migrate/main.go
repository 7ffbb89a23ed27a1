package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/moviesync/internal/cli"
	_ "github.com/JonMunkholm/moviesync/internal/core/tables"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewMigrateCommand())
	stop()
	os.Exit(code)
}
