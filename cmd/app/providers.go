package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/mars-recycler/internal/domain/marsdata"
	"github.com/yanqian/mars-recycler/internal/infra/config"
	"github.com/yanqian/mars-recycler/internal/infra/marscache"
	"github.com/yanqian/mars-recycler/internal/infra/nasa"
)

func provideMarsDataConfig(cfg *config.Config) marsdata.Config {
	return marsdata.Config{
		CacheTTL: cfg.Cache.TTL,
		Sols:     cfg.NASA.Sols,
	}
}

func provideNASAClient(cfg *config.Config, logger *slog.Logger) *nasa.BreakerClient {
	settings := nasa.DefaultBreakerSettings()
	if cfg.NASA.Breaker.MinRequests > 0 {
		settings.MinRequests = cfg.NASA.Breaker.MinRequests
	}
	if cfg.NASA.Breaker.FailureRatio > 0 {
		settings.FailureRatio = cfg.NASA.Breaker.FailureRatio
	}
	if cfg.NASA.Breaker.OpenTimeout > 0 {
		settings.OpenTimeout = cfg.NASA.Breaker.OpenTimeout
	}
	client := nasa.NewClient(cfg.NASA.BaseURL, cfg.NASA.APIKey, cfg.NASA.Timeout)
	return nasa.NewBreakerClient(client, settings, logger)
}

func provideMarsCache(cfg *config.Config, logger *slog.Logger) marsdata.Cache {
	if cfg.Cache.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return marscache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return marscache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("mars data valkey cache enabled", "addr", cfg.Cache.Valkey.Addr)
			return marscache.NewValkeyStore(client, cfg.Cache.Valkey.Prefix)
		}
	}
	return marscache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
