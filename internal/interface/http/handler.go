package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/mars-recycler/internal/domain/marsdata"
	"github.com/yanqian/mars-recycler/internal/domain/recycler"
)

const livenessMessage = "🚀 Mars Recycler Backend API is running!"

// Handler wires the HTTP transport to domain services.
type Handler struct {
	recyclerSvc recycler.Service
	marsSvc     marsdata.Service
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(recyclerSvc recycler.Service, marsSvc marsdata.Service, logger *slog.Logger) *Handler {
	return &Handler{
		recyclerSvc: recyclerSvc,
		marsSvc:     marsSvc,
		logger:      logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": livenessMessage})
}

// WasteTypes returns the full waste catalog.
func (h *Handler) WasteTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.recyclerSvc.WasteTypes())
}

// Workflow returns the processing steps.
func (h *Handler) Workflow(c *gin.Context) {
	c.JSON(http.StatusOK, h.recyclerSvc.Workflow())
}

// Process converts a waste mix into an energy yield.
func (h *Handler) Process(c *gin.Context) {
	var req recycler.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}

	resp, err := h.recyclerSvc.Process(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MarsWeather proxies the latest InSight reading. Always 200.
func (h *Handler) MarsWeather(c *gin.Context) {
	c.JSON(http.StatusOK, h.marsSvc.Weather(c.Request.Context()))
}

// MarsPhotos proxies Curiosity rover photos. Always 200.
func (h *Handler) MarsPhotos(c *gin.Context) {
	c.JSON(http.StatusOK, h.marsSvc.Photos(c.Request.Context()))
}
