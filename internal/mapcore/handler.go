package mapcore

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"localist_backend/internal/geo"
	"localist_backend/internal/osm"
	"localist_backend/platform/httpkit"
	"localist_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidPinID     = "invalid pin id"
	msgPinNotOnMap      = "pin not on map"
	msgClusterUnknown   = "cluster not found"
)

type viewportRequest struct {
	Lat  float64 `json:"lat" validate:"min=-90,max=90"`
	Lon  float64 `json:"lon" validate:"min=-180,max=180"`
	Zoom int     `json:"zoom" validate:"min=0,max=22"`
}

type clickRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

type selectResultRequest struct {
	Place osm.Place `json:"place" validate:"required"`
}

type locationPushRequest struct {
	Lat       *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lon       *float64 `json:"lon" validate:"omitempty,min=-180,max=180"`
	AccuracyM float64  `json:"accuracyMeters"`
	// ErrorCode carries the Geolocation API failure code when the fix failed.
	ErrorCode *int `json:"errorCode"`
}

type clusterResponse struct {
	ID      string      `json:"id"`
	Count   int         `json:"count"`
	Tier    ClusterTier `json:"tier"`
	Center  geo.Point   `json:"center"`
	Bounds  geo.Extent  `json:"bounds"`
	Members []Pin       `json:"members"`
}

// Handler exposes the map interaction core over HTTP.
type Handler struct {
	module *Module
	val    *validator.Validator
}

// NewHandler creates the map HTTP handler.
func NewHandler(module *Module, val *validator.Validator) *Handler {
	return &Handler{module: module, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/viewport", h.SetViewport)
	rg.GET("/pins", h.Pins)
	rg.GET("/clusters", h.Clusters)
	rg.POST("/clusters/:id/click", h.ClickCluster)
	rg.POST("/click", h.Click)
	rg.GET("/ghost", h.Ghost)
	rg.DELETE("/ghost", h.ClearGhost)
	rg.POST("/pins/:id/select", h.SelectPin)
	rg.POST("/deselect", h.Deselect)
	rg.POST("/select-result", h.SelectResult)
	rg.POST("/location", h.PushLocation)
	rg.POST("/locate", h.Locate)
	rg.POST("/watch/start", h.StartWatch)
	rg.POST("/watch/stop", h.StopWatch)
	rg.GET("/user-location", h.UserLocation)
	rg.GET("/commands", h.Commands)
}

func (h *Handler) controller(c *gin.Context) *Controller {
	return h.module.ControllerFor(c.Request.Context(), httpkit.SessionID(c))
}

// SetViewport records the client's map view for clustering and search bias.
func (h *Handler) SetViewport(c *gin.Context) {
	var req viewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	h.controller(c).SetViewport(Viewport{Center: geo.Point{Lat: req.Lat, Lon: req.Lon}, Zoom: req.Zoom})
	httpkit.NoContent(c)
}

// Pins returns the session's mirrored pins.
func (h *Handler) Pins(c *gin.Context) {
	pins := h.controller(c).Index().Pins()
	if pins == nil {
		pins = []Pin{}
	}
	httpkit.OK(c, gin.H{"pins": pins})
}

// Clusters returns the viewport's marker clusters.
func (h *Handler) Clusters(c *gin.Context) {
	clusters := h.controller(c).Clusters()
	out := make([]clusterResponse, 0, len(clusters))
	for _, cl := range clusters {
		out = append(out, clusterResponse{
			ID:      cl.ID,
			Count:   len(cl.Members),
			Tier:    cl.Tier(),
			Center:  cl.Center,
			Bounds:  cl.Bounds,
			Members: cl.Members,
		})
	}
	httpkit.OK(c, gin.H{"clusters": out})
}

// ClickCluster reveals a cluster's members.
func (h *Handler) ClickCluster(c *gin.Context) {
	if !h.controller(c).ClickCluster(c.Param("id")) {
		httpkit.Error(c, http.StatusNotFound, msgClusterUnknown, nil)
		return
	}
	httpkit.NoContent(c)
}

// Click places the ghost-pin candidate and returns it with its nearby pins.
func (h *Handler) Click(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	ghost := h.controller(c).HandleMapClick(req.Lat, req.Lon)
	httpkit.OK(c, ghost)
}

// Ghost returns the current ghost-pin candidate, if any.
func (h *Handler) Ghost(c *gin.Context) {
	ghost := h.controller(c).Ghost()
	if ghost == nil {
		httpkit.OK(c, gin.H{"ghost": nil})
		return
	}
	httpkit.OK(c, gin.H{"ghost": ghost})
}

// ClearGhost removes the ghost pin. Idempotent.
func (h *Handler) ClearGhost(c *gin.Context) {
	h.controller(c).ClearGhostPin()
	httpkit.NoContent(c)
}

// SelectPin marks a pin selected on the map.
func (h *Handler) SelectPin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPinID, nil)
		return
	}

	if !h.controller(c).SelectPin(id) {
		httpkit.Error(c, http.StatusNotFound, msgPinNotOnMap, nil)
		return
	}
	httpkit.NoContent(c)
}

// Deselect clears any pin selection.
func (h *Handler) Deselect(c *gin.Context) {
	h.controller(c).DeselectPin()
	httpkit.NoContent(c)
}

// SelectResult centers the map on a search result directly.
func (h *Handler) SelectResult(c *gin.Context) {
	var req selectResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	h.controller(c).SelectLocation(c.Request.Context(), req.Place)
	httpkit.NoContent(c)
}

// PushLocation feeds a client geolocation fix (or failure) to the session's
// location source.
func (h *Handler) PushLocation(c *gin.Context) {
	var req locationPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	source := h.module.LocationFor(httpkit.SessionID(c))
	if req.ErrorCode != nil {
		source.PushError(*req.ErrorCode)
		httpkit.NoContent(c)
		return
	}
	if req.Lat == nil || req.Lon == nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "lat and lon required for a fix")
		return
	}

	source.Push(LocationSample{
		Point:     geo.Point{Lat: *req.Lat, Lon: *req.Lon},
		AccuracyM: req.AccuracyM,
		Timestamp: time.Now(),
	})
	httpkit.NoContent(c)
}

// Locate centers the viewport on the next position fix.
func (h *Handler) Locate(c *gin.Context) {
	h.controller(c).LocateOnce(c.Request.Context())
	httpkit.NoContent(c)
}

// StartWatch begins continuous user-location tracking.
func (h *Handler) StartWatch(c *gin.Context) {
	if httpkit.HandleError(c, h.controller(c).StartWatching()) {
		return
	}
	httpkit.NoContent(c)
}

// StopWatch ends tracking and removes the user marker.
func (h *Handler) StopWatch(c *gin.Context) {
	h.controller(c).StopWatching()
	httpkit.NoContent(c)
}

// UserLocation returns the latest watched fix.
func (h *Handler) UserLocation(c *gin.Context) {
	sample := h.controller(c).UserLocation()
	if sample == nil {
		httpkit.OK(c, gin.H{"location": nil})
		return
	}
	httpkit.OK(c, gin.H{"location": sample})
}

// Commands drains the session's pending view commands for client replay.
func (h *Handler) Commands(c *gin.Context) {
	commands := h.module.ViewFor(httpkit.SessionID(c)).Drain()
	httpkit.OK(c, gin.H{"commands": commands})
}
