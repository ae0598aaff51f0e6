package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"downcast/internal/ml/mlerr"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetForecast godoc
// @Summary      Predict price drops for a ticker
// @Description  Returns drop predictions ("0.0" or "1.0") for the next day, two week, and one month horizons
// @Tags         forecast
// @Produce      json
// @Param        ticker  path  string  true  "Ticker symbol (e.g., AAPL)"
// @Success      200  {object}  forecast.Result
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/forecast/{ticker} [get]
func (h *Handler) GetForecast(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-forecast")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))

	result, err := h.forecastService.Forecast(ctx, ticker)
	if err != nil {
		writePipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetForecastHistory godoc
// @Summary      List past prediction runs for a ticker
// @Tags         forecast
// @Produce      json
// @Param        ticker  path   string  true   "Ticker symbol (e.g., AAPL)"
// @Param        limit   query  int     false  "Number of runs (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Router       /api/forecast/{ticker}/history [get]
func (h *Handler) GetForecastHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-forecast-history")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))

	limit := 50
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	forecasts, err := h.forecastService.History(ctx, ticker, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":    ticker,
		"forecasts": forecasts,
	})
}

// GetObservations godoc
// @Summary      List the stored daily series for a ticker
// @Tags         observations
// @Produce      json
// @Param        ticker  path  string  true  "Ticker symbol (e.g., AAPL)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/observations/{ticker} [get]
func (h *Handler) GetObservations(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-observations")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))

	observations, err := h.forecastService.Observations(ctx, ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":       ticker,
		"observations": observations,
	})
}

// TriggerIngest godoc
// @Summary      Refresh quotes and sentiment for a ticker
// @Tags         ingest
// @Produce      json
// @Param        ticker  path  string  true  "Ticker symbol (e.g., AAPL)"
// @Security     ApiKeyAuth
// @Success      202  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/ingest/{ticker} [post]
func (h *Handler) TriggerIngest(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-ingest")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))

	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}

	if err := h.ingestService.Ingest(ctx, ticker); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "ingested", "ticker": ticker})
}

// writePipelineError maps the modeling error taxonomy onto HTTP statuses:
// malformed input is the caller's fault, too-little-history is unprocessable,
// everything else is a server fault.
func writePipelineError(c *gin.Context, err error) {
	var verr *mlerr.ValidationError
	var ierr *mlerr.InsufficientDataError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.As(err, &ierr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ierr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
