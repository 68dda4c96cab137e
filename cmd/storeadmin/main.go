// Command storeadmin is the command line client of the store admin API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-store-admin/internal/cli"
	"github.com/jrsteele09/go-store-admin/internal/config"
	"github.com/jrsteele09/go-store-admin/internal/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	c := config.New()
	logger := logging.Setup(logging.Config{Level: c.GetLogLevel(), Env: c.GetEnv()})

	if len(os.Args) == 1 {
		displayAppname(c.GetAppName())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, cli.WithConfig(c), cli.WithLogger(logger)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
