package handlers

import (
	"net/http"

	"example.com/fleetcontrol/internal/api"
	"example.com/fleetcontrol/internal/listview"
	"example.com/fleetcontrol/internal/models"
	"example.com/fleetcontrol/internal/store"
	"example.com/fleetcontrol/internal/validate"

	"github.com/gin-gonic/gin"
)

// tripSource searches trip records by driver and vehicle model; newest
// checkout first.
var tripSource = listview.Source[models.TripRecord]{
	Fields: func(t models.TripRecord) []string {
		return []string{t.DriverName, t.VehicleModel}
	},
	ID: func(t models.TripRecord) int64 { return t.ID },
}

// TripsHandler exposes the derived trip log and the CRUD operations over its
// two underlying event resources.
type TripsHandler struct {
	store *store.EventLogStore
}

// NewTripsHandler creates a new trips handler
func NewTripsHandler(s *store.EventLogStore) *TripsHandler {
	return &TripsHandler{store: s}
}

// HandleList returns one projected page of the derived trip records.
func (h *TripsHandler) HandleList(c *gin.Context) {
	page := listview.Project(h.store.List(), tripSource, listParams(c))

	resp := listResponse[models.TripRecord]{
		Items:       page.Items,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
	if err := h.store.FetchError(); err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// HandleListCheckouts returns the raw checkout event collection, which edit
// forms need alongside the derived view.
func (h *TripsHandler) HandleListCheckouts(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Checkouts())
}

// HandleListCheckIns returns the raw check-in event collection.
func (h *TripsHandler) HandleListCheckIns(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.CheckIns())
}

// HandleCreateCheckout opens a trip.
func (h *TripsHandler) HandleCreateCheckout(c *gin.Context) {
	var input models.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}
	if err := checkoutValid(input); err != nil {
		api.WriteError(c, err)
		return
	}

	if err := h.store.CreateCheckout(c.Request.Context(), input); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// HandleUpdateCheckout edits a checkout event.
func (h *TripsHandler) HandleUpdateCheckout(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	var input models.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}
	if err := checkoutValid(input); err != nil {
		api.WriteError(c, err)
		return
	}

	if err := h.store.UpdateCheckout(c.Request.Context(), id, input); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleDeleteCheckout removes a checkout event.
func (h *TripsHandler) HandleDeleteCheckout(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	if err := h.store.DeleteCheckout(c.Request.Context(), id); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleCreateCheckIn closes a trip. Whether to create or update is the
// caller's choice, made from the current trip status.
func (h *TripsHandler) HandleCreateCheckIn(c *gin.Context) {
	var input models.CheckInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}
	if err := checkinValid(input); err != nil {
		api.WriteError(c, err)
		return
	}

	if err := h.store.CreateCheckIn(c.Request.Context(), input); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// HandleUpdateCheckIn edits a check-in event.
func (h *TripsHandler) HandleUpdateCheckIn(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	var input models.CheckInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}
	if err := checkinValid(input); err != nil {
		api.WriteError(c, err)
		return
	}

	if err := h.store.UpdateCheckIn(c.Request.Context(), id, input); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleDeleteCheckIn removes a check-in event, reopening its trip.
func (h *TripsHandler) HandleDeleteCheckIn(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		api.WriteError(c, api.ErrInvalidRequest)
		return
	}

	if err := h.store.DeleteCheckIn(c.Request.Context(), id); err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterRoutes registers the handler's routes
func (h *TripsHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/trips", h.HandleList)

	checkouts := router.Group("/api/checkout-events")
	checkouts.GET("", h.HandleListCheckouts)
	checkouts.POST("", h.HandleCreateCheckout)
	checkouts.PUT("/:id", h.HandleUpdateCheckout)
	checkouts.DELETE("/:id", h.HandleDeleteCheckout)

	checkins := router.Group("/api/checkin-events")
	checkins.GET("", h.HandleListCheckIns)
	checkins.POST("", h.HandleCreateCheckIn)
	checkins.PUT("/:id", h.HandleUpdateCheckIn)
	checkins.DELETE("/:id", h.HandleDeleteCheckIn)
}

func checkoutValid(input models.CheckoutInput) error {
	missing := validate.RequiredFields(map[string]string{
		"driver_name":    input.DriverName,
		"departure_date": input.DepartureDate,
		"departure_time": input.DepartureTime,
	})
	if input.VehicleID == 0 {
		missing = append([]string{"vehicle_id"}, missing...)
	}
	if len(missing) > 0 {
		return &validate.Error{Fields: missing, Message: "missing required fields"}
	}
	return nil
}

func checkinValid(input models.CheckInInput) error {
	missing := validate.RequiredFields(map[string]string{
		"arrival_date": input.ArrivalDate,
		"arrival_time": input.ArrivalTime,
	})
	if input.CheckoutEventID == 0 {
		missing = append([]string{"checkout_event_id"}, missing...)
	}
	if len(missing) > 0 {
		return &validate.Error{Fields: missing, Message: "missing required fields"}
	}
	return nil
}
