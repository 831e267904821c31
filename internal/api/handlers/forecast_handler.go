package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
	"github.com/MerlinStacks/woodash-forecast/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

func (h *ForecastHandler) accountID(c *gin.Context) (int64, bool) {
	raw := c.Query("account_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id is required"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback))); err == nil && v > 0 {
		return v
	}
	return fallback
}

func (h *ForecastHandler) GetSkuForecasts(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}
	horizonDays := intQuery(c, "horizon_days", 0)

	forecasts, err := h.service.GetSkuForecasts(c.Request.Context(), accountID, horizonDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute forecasts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"forecasts": forecasts,
		"total":     len(forecasts),
	})
}

func (h *ForecastHandler) GetStockoutAlerts(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}
	thresholdDays := intQuery(c, "threshold_days", 0)

	alerts, err := h.service.GetStockoutAlerts(c.Request.Context(), accountID, thresholdDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stockout alerts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (h *ForecastHandler) GetSkuForecastDetail(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	externalID, err := strconv.ParseInt(c.Param("external_id"), 10, 64)
	if err != nil || externalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid external_id"})
		return
	}
	horizonDays := intQuery(c, "horizon_days", 0)

	detail, err := h.service.GetSkuForecastDetail(c.Request.Context(), accountID, externalID, horizonDays)
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entity is not a forecast target"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute forecast detail", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *ForecastHandler) ExportAlertReport(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}
	thresholdDays := intQuery(c, "threshold_days", 0)

	key, err := h.service.ExportAlertReport(c.Request.Context(), accountID, thresholdDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export alert report", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"object_key": key})
}
