package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/mars-recycler/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		recoveryMiddleware(handler.logger),
		requestIDMiddleware(),
		requestLogger(handler.logger),
		metricsMiddleware(),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	api := router.Group("/api")
	{
		api.GET("", handler.Health)
		api.GET("/waste-types", handler.WasteTypes)
		api.GET("/workflow", handler.Workflow)
		api.POST("/process", handler.Process)
		api.GET("/mars-weather", handler.MarsWeather)
		api.GET("/mars-photos", handler.MarsPhotos)
	}

	if cfg.HTTP.MetricsPath != "" {
		router.GET(cfg.HTTP.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	static := newStaticFiles(cfg.Static.Roots, cfg.Static.Index)
	router.GET("/", static.Index)
	router.HEAD("/", static.Index)
	router.NoRoute(static.Fallback)

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
