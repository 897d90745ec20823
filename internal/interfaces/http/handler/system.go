package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gameshop/backend/internal/infrastructure/event"
	"github.com/gameshop/backend/internal/infrastructure/logger"
	"github.com/gameshop/backend/internal/infrastructure/strategy"
	"github.com/gameshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reloader rebuilds the live shops from storage
type Reloader interface {
	Reload(ctx context.Context) error
}

// PricerLister lists the registered pricing types
type PricerLister interface {
	List() []strategy.PricerInfo
}

// Pinger checks a backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// EventStats reports event bus counters
type EventStats interface {
	Stats() event.Stats
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	catalog   Reloader
	pricers   PricerLister
	db        Pinger
	events    EventStats
}

// SystemDeps are the collaborators of the system endpoints. Nil members
// disable the matching checks.
type SystemDeps struct {
	Catalog Reloader
	Pricers PricerLister
	DB      Pinger
	Events  EventStats
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, deps SystemDeps) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		catalog:   deps.Catalog,
		pricers:   deps.Pricers,
		db:        deps.DB,
		events:    deps.Events,
	}
}

// RegisterRoutes mounts the system endpoints
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	system.GET("/info", h.GetSystemInfo)
	system.GET("/health", h.Health)
	system.GET("/pricers", h.ListPricers)
	system.POST("/reload", h.Reload)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string       `json:"name"`
	Version   string       `json:"version"`
	GoVersion string       `json:"go_version"`
	Uptime    string       `json:"uptime"`
	Events    *event.Stats `json:"events,omitempty"`
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.events != nil {
		stats := h.events.Stats()
		info.Events = &stats
	}
	h.Success(c, info)
}

// HealthResponse reports the state of the backing stores
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /system/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "disabled"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			logger.FromGin(c).Warn("Database health check failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
			return
		}
		resp.Database = "ok"
	}
	h.Success(c, resp)
}

// ListPricers godoc
// @Summary      List pricing types
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=[]strategy.PricerInfo}
// @Router       /system/pricers [get]
func (h *SystemHandler) ListPricers(c *gin.Context) {
	var pricers []strategy.PricerInfo
	if h.pricers != nil {
		pricers = h.pricers.List()
	}
	c.JSON(http.StatusOK, dto.NewListResponse(pricers))
}

// ReloadResponse confirms a reload
type ReloadResponse struct {
	ReloadedAt time.Time `json:"reloaded_at"`
}

// Reload godoc
// @Summary      Reload shops
// @Description  Persists pricer state and rebuilds every shop from storage
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=ReloadResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /system/reload [post]
func (h *SystemHandler) Reload(c *gin.Context) {
	if h.catalog == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInvalidState, "Catalog is not available")
		return
	}
	if err := h.catalog.Reload(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	logger.FromGin(c).Info("Shops reloaded")
	h.Success(c, ReloadResponse{ReloadedAt: time.Now().UTC()})
}
