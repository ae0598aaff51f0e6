package handler

import (
	"downcast/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer          trace.Tracer
	forecastService *service.ForecastService
	ingestService   *service.IngestService
	ingestAuthToken string
}

func New(tracer trace.Tracer, forecastService *service.ForecastService, ingestService *service.IngestService, ingestAuthToken string) *Handler {
	return &Handler{
		tracer:          tracer,
		forecastService: forecastService,
		ingestService:   ingestService,
		ingestAuthToken: ingestAuthToken,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/forecast/:ticker", h.GetForecast)
	r.GET("/api/forecast/:ticker/history", h.GetForecastHistory)
	r.GET("/api/observations/:ticker", h.GetObservations)
	r.POST("/api/ingest/:ticker", APIKeyAuth(h.ingestAuthToken), h.TriggerIngest)
}
