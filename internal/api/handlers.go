package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/orchestrator"
	"github.com/ordinator/ordinator/internal/strategic"
)

// Handlers implements the orchestrator's external request surface (§6):
// asset lifecycle, status queries and export.
type Handlers struct {
	orchestrator *orchestrator.Orchestrator
}

// NewHandlers builds the Echo handlers over an Orchestrator.
func NewHandlers(o *orchestrator.Orchestrator) *Handlers {
	return &Handlers{orchestrator: o}
}

// Health answers a liveness probe.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse(map[string]string{"status": "ok"}))
}

// ListAssets lists every asset currently running.
func (h *Handlers) ListAssets(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse(h.orchestrator.Assets()))
}

// CreateAsset implements asset_factory over HTTP (§4.9, §6).
func (h *Handlers) CreateAsset(c echo.Context) error {
	asset := entity.Asset(c.Param("asset"))
	if err := h.orchestrator.CreateAsset(c.Request().Context(), asset); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("CREATE_ASSET_FAILED", err.Error()))
	}
	return c.JSON(http.StatusCreated, SuccessResponse(map[string]string{"asset": string(asset)}))
}

// DeleteAsset cancels and deregisters an asset's actors.
func (h *Handlers) DeleteAsset(c echo.Context) error {
	asset := entity.Asset(c.Param("asset"))
	h.orchestrator.DeleteAsset(asset)
	return c.JSON(http.StatusOK, SuccessResponse(map[string]string{"asset": string(asset)}))
}

// AssetStatus reports whether every actor spawned for an asset is alive.
func (h *Handlers) AssetStatus(c echo.Context) error {
	asset := entity.Asset(c.Param("asset"))
	status, err := h.orchestrator.Status(c.Request().Context(), asset)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponseWithCode("UNKNOWN_ASSET", err.Error()))
	}
	return c.JSON(http.StatusOK, SuccessResponse(status))
}

// Export returns the asset's current Shared Solution composite.
func (h *Handlers) Export(c echo.Context) error {
	asset := entity.Asset(c.Param("asset"))
	composite, err := h.orchestrator.Export(asset)
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponseWithCode("UNKNOWN_ASSET", err.Error()))
	}
	return c.JSON(http.StatusOK, SuccessResponse(composite))
}

// WorkOrderStatus reports the strategic actor's current decision for a work
// order: its scheduled period and whether one has been decided. Tactical
// start/finish dates are not included.
func (h *Handlers) WorkOrderStatus(c echo.Context) error {
	asset := entity.Asset(c.Param("asset"))
	won, err := strconv.ParseInt(c.Param("workOrderNumber"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithCode("INVALID_WORK_ORDER_NUMBER", err.Error()))
	}

	resp, err := h.orchestrator.RequestStrategic(c.Request().Context(), asset, strategic.Request{
		Kind:            strategic.RequestScheduledTask,
		WorkOrderNumber: entity.WorkOrderNumber(won),
	})
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponseWithCode("UNKNOWN_ASSET", err.Error()))
	}
	return c.JSON(http.StatusOK, SuccessResponse(resp))
}
