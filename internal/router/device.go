package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/domain"
)

// DeviceHandler 暴露设备、统计、刷新和控制命令接口。
type DeviceHandler struct {
	svc    *app.Service
	logger *zap.Logger
}

// NewDeviceHandler 构建一个新的 DeviceHandler。
func NewDeviceHandler(svc *app.Service, logger *zap.Logger) *DeviceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceHandler{svc: svc, logger: logger}
}

// RegisterRoutes 将路由注册到给定的路由组。
func (h *DeviceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/devices", h.handleDevices)
	rg.GET("/statistics", h.handleStatistics)
	rg.POST("/refresh", h.handleRefresh)
	rg.POST("/control", h.handleControl)
	rg.GET("/settings", h.handleGetSettings)
	rg.PATCH("/settings", h.handlePatchSettings)
}

type devicesResponse struct {
	CycleID string          `json:"cycle_id,omitempty"`
	Devices []domain.Entity `json:"devices"`
}

type controlRequest struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type settingsRequest struct {
	DisplayConferences *bool `json:"display_conferences"`
	DaysBack           *int  `json:"days_back"`
}

func (h *DeviceHandler) handleDevices(c *gin.Context) {
	var ids []string
	for _, raw := range c.QueryArray("id") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	resp := devicesResponse{Devices: h.svc.Devices(ids...)}
	if resp.Devices == nil {
		resp.Devices = []domain.Entity{}
	}
	if last := h.svc.Last(); last != nil {
		resp.CycleID = last.CycleID
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DeviceHandler) handleStatistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *DeviceHandler) handleRefresh(c *gin.Context) {
	res, err := h.svc.RefreshNow(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, devicesResponse{CycleID: res.CycleID, Devices: res.Nodes})
}

func (h *DeviceHandler) handleControl(c *gin.Context) {
	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if strings.TrimSpace(req.Property) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property is required"})
		return
	}
	if err := h.svc.Control(c.Request.Context(), req.Property, req.Value); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *DeviceHandler) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings())
}

func (h *DeviceHandler) handlePatchSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.DaysBack != nil {
		if err := h.svc.SetDaysBack(c.Request.Context(), *req.DaysBack); err != nil {
			h.fail(c, err)
			return
		}
	}
	if req.DisplayConferences != nil {
		h.svc.SetDisplayConferences(*req.DisplayConferences)
	}
	c.JSON(http.StatusOK, h.svc.Settings())
}

func (h *DeviceHandler) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// StatusFor 把业务错误映射成 HTTP 状态码，其余错误视为上游管理节点失败。
func StatusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, app.ErrInvalidArgument), errors.Is(err, app.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrEmptyData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrMailDisabled), errors.Is(err, app.ErrNoRecipients):
		return http.StatusPreconditionFailed
	default:
		return http.StatusBadGateway
	}
}
