package handlers

import (
	"net/http"
	"strconv"

	"example.com/fleetcontrol/internal/api"
	"example.com/fleetcontrol/internal/listview"
	"example.com/fleetcontrol/internal/models"
	"example.com/fleetcontrol/internal/store"
	"example.com/fleetcontrol/internal/validate"

	"github.com/gin-gonic/gin"
)

// vehicleSource describes how vehicle lists are searched and ordered:
// make/model/plate are searchable, disabled vehicles rank first, newest id
// wins ties.
var vehicleSource = listview.Source[models.Vehicle]{
	Fields: func(v models.Vehicle) []string {
		return []string{v.Make, v.Model, v.Plate}
	},
	Priority: func(v models.Vehicle) int {
		if v.Enabled {
			return 1
		}
		return 0
	},
	ID: func(v models.Vehicle) int64 { return v.ID },
}

// VehiclesHandler exposes the vehicle collection and its mutations.
type VehiclesHandler struct {
	store *store.VehicleStore
}

// NewVehiclesHandler creates a new vehicles handler
func NewVehiclesHandler(s *store.VehicleStore) *VehiclesHandler {
	return &VehiclesHandler{store: s}
}

// listResponse wraps a projected page together with the store's persistent
// fetch-error state so the view can render an inline error.
type listResponse[T any] struct {
	Items       []T    `json:"items"`
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	Error       string `json:"error,omitempty"`
}

// HandleList returns one projected page of the cached vehicle collection.
func (h *VehiclesHandler) HandleList(c *gin.Context) {
	page := listview.Project(h.store.List(), vehicleSource, listParams(c))

	resp := listResponse[models.Vehicle]{
		Items:       page.Items,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
	if err := h.store.FetchError(); err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCreate validates and submits a new vehicle.
func (h *VehiclesHandler) HandleCreate(c *gin.Context) {
	var input models.VehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	input.Plate = validate.NormalizePlate(input.Plate)
	if err := validate.Vehicle(input, h.store.List(), 0); err != nil {
		api.WriteError(c, err)
		return
	}

	if err := h.store.Create(c.Request.Context(), input); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// HandleUpdate validates and submits an edit of an existing vehicle.
func (h *VehiclesHandler) HandleUpdate(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	var input models.VehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	input.Plate = validate.NormalizePlate(input.Plate)
	if err := validate.Vehicle(input, h.store.List(), id); err != nil {
		api.WriteError(c, err)
		return
	}

	patch := models.VehiclePatch{
		Make:    &input.Make,
		Model:   &input.Model,
		Plate:   &input.Plate,
		Enabled: &input.Enabled,
	}
	if err := h.store.Update(c.Request.Context(), id, patch); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleToggleStatus enables or disables one vehicle.
func (h *VehiclesHandler) HandleToggleStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	var body struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	if err := h.store.ToggleStatus(c.Request.Context(), id, *body.Enabled); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleDelete removes one vehicle. A failed delete propagates so the view
// can tell the user it did not take effect.
func (h *VehiclesHandler) HandleDelete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterRoutes registers the handler's routes
func (h *VehiclesHandler) RegisterRoutes(router *gin.Engine) {
	vehicles := router.Group("/api/vehicles")
	vehicles.GET("", h.HandleList)
	vehicles.POST("", h.HandleCreate)
	vehicles.PUT("/:id", h.HandleUpdate)
	vehicles.POST("/:id/status", h.HandleToggleStatus)
	vehicles.DELETE("/:id", h.HandleDelete)
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func listParams(c *gin.Context) listview.Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return listview.Params{
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
		Descending: c.DefaultQuery("order", "desc") != "asc",
	}
}
