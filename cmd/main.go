package main

import (
	"context"
	"demo/config"
	V1 "demo/hander/v1"
	"demo/pkg/log"
	"demo/serve"
	"demo/usecase"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

type App struct {
	Service *serve.HttpServer
	config  *config.Config
	logger  *log.Logger
	assets  *usecase.AssetUsecase
	handers *V1.Handers
}

// @title r69 API
// @version 1.0
// @description Animated character chat service.
// @BasePath /
func main() {
	app, err := InitializeApp()
	if err != nil {
		stdlog.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.assets.Check(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(app.Service.Start)
	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Service.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		app.logger.Error("server exited", log.Error(err))
		os.Exit(1)
	}
}
