//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/mars-recycler/internal/bootstrap"
	"github.com/yanqian/mars-recycler/internal/domain/marsdata"
	"github.com/yanqian/mars-recycler/internal/domain/recycler"
	"github.com/yanqian/mars-recycler/internal/infra/config"
	"github.com/yanqian/mars-recycler/internal/infra/nasa"
	httpiface "github.com/yanqian/mars-recycler/internal/interface/http"
	"github.com/yanqian/mars-recycler/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideMarsDataConfig,
		provideNASAClient,
		provideMarsCache,
		recycler.NewService,
		marsdata.NewService,
		wire.Bind(new(marsdata.NASAClient), new(*nasa.BreakerClient)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
