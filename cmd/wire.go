//go:build wireinject
// +build wireinject

package main

import (
	"demo/config"
	V1 "demo/hander/v1"
	"demo/pkg/log"
	"demo/serve"

	"github.com/google/wire"
)

func InitializeApp() (*App, error) {
	wire.Build(
		wire.Struct(new(App), "*"),
		wire.NewSet(
			serve.NewHttpServer,
			config.NewConfig,
			log.ProviderSet,
			V1.ProviderSet,
		),
	)
	return &App{}, nil
}
