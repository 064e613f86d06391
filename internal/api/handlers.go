package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"safety-service/internal/db"
	"safety-service/internal/geocode"
	"safety-service/internal/logging"
	"safety-service/internal/models"
	"safety-service/internal/realtime"
	"safety-service/internal/sos"
)

type Handler struct {
	db       *db.DB
	logger   *logging.Logger
	svc      *sos.Service
	resolver *geocode.Resolver
	hub      *realtime.Hub
}

func NewHandler(db *db.DB, logger *logging.Logger, svc *sos.Service, resolver *geocode.Resolver, hub *realtime.Hub) *Handler {
	return &Handler{db: db, logger: logger, svc: svc, resolver: resolver, hub: hub}
}

// TriggerSOS handles POST /api/sos/:user_id. The body is optional; every
// field in it is optional too.
func (h *Handler) TriggerSOS(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req models.TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warnf("Invalid SOS request body for user %d: %v", userID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Trigger(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, sos.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Errorf("SOS trigger error for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error triggering SOS"})
		return
	}

	response := gin.H{
		"message":            "SOS triggered successfully",
		"alert_id":           result.AlertID,
		"notifications_sent": result.NotificationsSent,
		"location_shared":    result.LocationShared,
		"emergency_services": result.EmergencyServices,
	}
	if len(result.NotificationErrors) > 0 {
		response["notification_errors"] = result.NotificationErrors
	}
	c.JSON(http.StatusCreated, response)
}

// RecentAlerts handles GET /api/sos/:user_id/recent.
func (h *Handler) RecentAlerts(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		days = 7
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit < 1 {
		limit = 5
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	alerts, err := h.db.RecentAlerts(c.Request.Context(), userID, since, limit)
	if err != nil {
		h.logger.Errorf("Recent alerts error for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// ResolveAlert handles POST /api/sos/alerts/:alert_id/resolve.
func (h *Handler) ResolveAlert(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("alert_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert id"})
		return
	}

	var req struct {
		Notes string `json:"resolution_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.ResolveAlert(c.Request.Context(), alertID, req.Notes); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Active alert not found"})
			return
		}
		h.logger.Errorf("Resolve alert %s failed: %v", alertID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error resolving alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert resolved", "alert_id": alertID})
}

// UpdateLocation handles POST /api/location/:user_id/live. Unlike the SOS
// path, invalid coordinates here are a hard client error.
func (h *Handler) UpdateLocation(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var update models.LocationUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No location data provided"})
		return
	}
	if err := update.Validate(); err != nil {
		h.logger.Warnf("Invalid location data for user %d: %v", userID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loc := models.LocationLog{
		UserID:         userID,
		Latitude:       *update.Latitude,
		Longitude:      *update.Longitude,
		Accuracy:       update.Accuracy,
		Altitude:       update.Altitude,
		Heading:        update.Heading,
		Speed:          update.Speed,
		Source:         update.Source,
		IsHighAccuracy: update.IsHighAccuracy(),
		Timestamp:      time.Now().UTC(),
	}
	if loc.Source == "" {
		loc.Source = "gps"
	}
	if resolved := h.resolver.Resolve(c.Request.Context(), loc.Latitude, loc.Longitude); resolved != nil {
		loc.Address = &resolved.FullAddress
	}

	id, err := h.db.InsertLocation(c.Request.Context(), loc)
	if err != nil {
		h.logger.Errorf("Location update error for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating location"})
		return
	}
	loc.ID = id

	c.JSON(http.StatusCreated, gin.H{
		"message": "Location updated",
		"location": gin.H{
			"id":                   loc.ID,
			"latitude":             loc.Latitude,
			"longitude":            loc.Longitude,
			"accuracy":             loc.Accuracy,
			"accuracy_description": geocode.DescribeAccuracy(loc.Accuracy),
			"altitude":             loc.Altitude,
			"heading":              loc.Heading,
			"speed":                loc.Speed,
			"address":              loc.Address,
			"location_source":      loc.Source,
			"timestamp":            loc.Timestamp,
		},
	})
}

// LocationHistory handles GET /api/location/:user_id/history.
func (h *Handler) LocationHistory(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 {
		limit = 100
	}
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours < 1 {
		hours = 24
	}
	highAccuracyOnly := c.DefaultQuery("high_accuracy_only", "false") == "true"

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	locations, err := h.db.LocationHistory(c.Request.Context(), userID, since, limit, highAccuracyOnly)
	if err != nil {
		h.logger.Errorf("Location history error for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching location history"})
		return
	}

	type entry struct {
		models.LocationLog
		AccuracyDescription string `json:"accuracy_description"`
	}
	entries := make([]entry, 0, len(locations))
	for _, loc := range locations {
		entries = append(entries, entry{LocationLog: loc, AccuracyDescription: geocode.DescribeAccuracy(loc.Accuracy)})
	}

	c.JSON(http.StatusOK, gin.H{
		"locations": entries,
		"count":     len(entries),
		"filters":   gin.H{"hours": hours, "limit": limit, "high_accuracy_only": highAccuracyOnly},
	})
}
