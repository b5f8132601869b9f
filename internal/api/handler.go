package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-disaster-prep/internal/broadcast"
	"github.com/mr1hm/go-disaster-prep/internal/checklist"
	"github.com/mr1hm/go-disaster-prep/internal/geo"
	"github.com/mr1hm/go-disaster-prep/internal/models"
	"github.com/mr1hm/go-disaster-prep/internal/observability"
	"github.com/mr1hm/go-disaster-prep/internal/repository"
	"github.com/mr1hm/go-disaster-prep/internal/service"
	"github.com/mr1hm/go-disaster-prep/pkg/e"
)

// UserHeader carries the caller's user id. Requests without it are anonymous.
const UserHeader = "X-User-ID"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Alerts      *service.AlertService
	Resources   *service.ResourceService
	Community   *service.CommunityService
	Checklists  *checklist.Service
	Broadcaster *broadcast.Broadcaster
	Metrics     *observability.Metrics
	// Store is pinged by /health. Optional.
	Store Pinger
}

type Handler struct {
	alerts      *service.AlertService
	resources   *service.ResourceService
	community   *service.CommunityService
	checklists  *checklist.Service
	broadcaster *broadcast.Broadcaster
	metrics     *observability.Metrics
	store       Pinger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		alerts:      d.Alerts,
		resources:   d.Resources,
		community:   d.Community,
		checklists:  d.Checklists,
		broadcaster: d.Broadcaster,
		metrics:     d.Metrics,
		store:       d.Store,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/alerts", h.getAlerts)
	api.GET("/alerts/local", h.getLocalAlerts)
	api.GET("/alerts/stream", h.streamAlerts)
	api.POST("/debug/test-alert", h.createTestAlert)

	api.GET("/resources", h.getResources)

	api.GET("/checklists/:disasterType", h.getChecklist)
	api.POST("/checklists/items/:id/toggle", h.toggleChecklistItem)
	api.PUT("/checklists/items/:id", h.setChecklistItem)

	api.GET("/contacts", h.getContacts)
	api.POST("/contacts", h.addContact)
	api.DELETE("/contacts/:id", h.removeContact)

	api.GET("/messages", h.getMessages)
	api.POST("/messages", h.postMessage)
}

func (h *Handler) health(c *gin.Context) {
	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			slog.Warn("health check: store ping failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getAlerts(c *gin.Context) {
	// no params: every active alert, which also refreshes the cached snapshot
	var filter repository.Filter

	if t := c.Query("type"); t != "" {
		filter.Type = t
	}
	if s := c.Query("severity"); s != "" {
		sev := models.Severity(strings.ToLower(s))
		if !sev.Valid() {
			badRequest(c, fmt.Sprintf("invalid severity %q", s))
			return
		}
		filter.Severity = &sev
	}
	if s := c.Query("since"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			badRequest(c, "since must be YYYY-MM-DD")
			return
		}
		filter.Since = &t
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}

	c.JSON(http.StatusOK, h.alerts.ActiveAlerts(c.Request.Context(), filter))
}

func (h *Handler) getLocalAlerts(c *gin.Context) {
	loc := models.Location{
		City:  strings.TrimSpace(c.Query("city")),
		State: strings.TrimSpace(c.Query("state")),
	}
	c.JSON(http.StatusOK, h.alerts.LocalAlerts(c.Request.Context(), loc))
}

// streamAlerts pushes newly ingested alerts as server-sent events. When a
// state is given only alerts matching the location are sent.
func (h *Handler) streamAlerts(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert stream unavailable"})
		return
	}

	loc := models.Location{
		City:  strings.TrimSpace(c.Query("city")),
		State: strings.TrimSpace(c.Query("state")),
	}

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)
	if h.metrics != nil {
		h.metrics.StreamSubscribers.Inc()
		defer h.metrics.StreamSubscribers.Dec()
	}

	ctx := c.Request.Context()
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("ready", gin.H{"subscriber": id})
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case a, ok := <-ch:
			if !ok {
				return false
			}
			if loc.State != "" && !geo.MatchesLocation(loc, *a) {
				return true
			}
			c.SSEvent("alert", a)
			return true
		}
	})
}

// createTestAlert broadcasts a synthetic alert without persisting it.
func (h *Handler) createTestAlert(c *gin.Context) {
	now := time.Now().UTC()
	alert := &models.DisasterAlert{
		ID:           fmt.Sprintf("test_%d", now.UnixNano()),
		Source:       "test",
		Type:         models.DisasterTypeEarthquake,
		Severity:     models.SeverityHigh,
		Location:     "Delhi NCR",
		Timestamp:    now,
		Description:  "This is a test alert for debugging",
		Instructions: []string{"Drop, cover, and hold on"},
		CreatedAt:    now,
	}

	if h.broadcaster != nil {
		h.broadcaster.Broadcast(alert)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "test alert broadcast (not persisted)",
		"id":      alert.ID,
	})
}

func (h *Handler) getResources(c *gin.Context) {
	origin, err := parseOrigin(c.Query("lat"), c.Query("lng"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var rt models.ResourceType
	if t := c.Query("type"); t != "" {
		rt = models.ResourceType(strings.ToLower(t))
		if !rt.Valid() {
			badRequest(c, fmt.Sprintf("invalid resource type %q", t))
			return
		}
	}

	res := h.resources.Nearby(c.Request.Context(), origin, rt)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(res.Resources, res.Degraded))
}

// parseOrigin returns nil when neither coordinate is given.
func parseOrigin(latStr, lngStr string) (*models.Coordinate, error) {
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errors.New("lat and lng must be given together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q", lngStr)
	}
	origin := &models.Coordinate{Latitude: lat, Longitude: lng}
	if err := origin.Validate(); err != nil {
		return nil, errors.New("coordinates out of range")
	}
	return origin, nil
}

func (h *Handler) getChecklist(c *gin.Context) {
	disasterType := canonicalDisasterType(c.Param("disasterType"))

	list, err := h.checklists.ForUser(userID(c)).GetChecklistForDisaster(c.Request.Context(), disasterType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) toggleChecklistItem(c *gin.Context) {
	ctx := c.Request.Context()
	r := h.checklists.ForUser(userID(c))
	if err := r.Load(ctx); err != nil {
		writeError(c, err)
		return
	}

	item, err := r.ToggleChecklistItem(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type setCompletionRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (h *Handler) setChecklistItem(c *gin.Context) {
	var req setCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must be {\"completed\": bool}")
		return
	}

	ctx := c.Request.Context()
	r := h.checklists.ForUser(userID(c))
	if err := r.Load(ctx); err != nil {
		writeError(c, err)
		return
	}

	item, err := r.SetCompletion(ctx, c.Param("id"), *req.Completed)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) getContacts(c *gin.Context) {
	contacts, err := h.community.Contacts(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (h *Handler) addContact(c *gin.Context) {
	var in models.EmergencyContact
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid contact body")
		return
	}

	contact, err := h.community.AddContact(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *Handler) removeContact(c *gin.Context) {
	if err := h.community.RemoveContact(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getMessages(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 200 {
			limit = lim
		}
	}

	msgs, err := h.community.Messages(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) postMessage(c *gin.Context) {
	var in models.CommunityMessage
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid message body")
		return
	}

	msg, err := h.community.PostMessage(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func userID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(UserHeader))
}

// canonicalDisasterType maps "flood" or "FLOOD" onto the template key "Flood".
// Unknown names pass through unchanged.
func canonicalDisasterType(s string) string {
	for _, t := range checklist.DisasterTypes() {
		if strings.EqualFold(t, s) {
			return t
		}
	}
	return s
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, e.ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, "sign in required"
	case errors.Is(err, e.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, e.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, e.ErrConflict):
		status, msg = http.StatusConflict, "already exists"
	case errors.Is(err, e.ErrStoreUnavailable):
		status, msg = http.StatusServiceUnavailable, "store unavailable, try again later"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}
