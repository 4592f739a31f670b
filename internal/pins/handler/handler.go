// Package handler exposes pin CRUD, reviews and favorites over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"localist_backend/internal/pins/service"
	"localist_backend/internal/pins/transport"
	"localist_backend/platform/httpkit"
	"localist_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidPinID     = "invalid pin id"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/bounds", h.ListByBounds)
	rg.GET("/categories", h.ListCategories)
	rg.GET("/favorites", h.ListFavorites)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/reviews", h.AddReview)
	rg.POST("/:id/favorite", h.ToggleFavorite)
}

func pinID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPinID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// List returns all pins visible to the session.
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.GetAll(c.Request.Context(), httpkit.SessionID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListByBounds returns visible pins inside the viewport rectangle.
func (h *Handler) ListByBounds(c *gin.Context) {
	var req transport.BoundsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.GetByBounds(c.Request.Context(), req, httpkit.SessionID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListCategories returns all pin categories.
func (h *Handler) ListCategories(c *gin.Context) {
	result, err := h.svc.ListCategories(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one pin with reviews and favorite aggregates.
func (h *Handler) Get(c *gin.Context) {
	id, ok := pinID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id, httpkit.SessionID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create saves a new pin.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req, httpkit.SessionID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Update changes a pin the session owns.
func (h *Handler) Update(c *gin.Context) {
	id, ok := pinID(c)
	if !ok {
		return
	}

	var req transport.UpdatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req, httpkit.SessionID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a pin the session owns.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pinID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id, httpkit.SessionID(c))) {
		return
	}
	httpkit.NoContent(c)
}

// AddReview records a review on a visible pin.
func (h *Handler) AddReview(c *gin.Context) {
	id, ok := pinID(c)
	if !ok {
		return
	}

	var req transport.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AddReview(c.Request.Context(), id, req, httpkit.SessionID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// ToggleFavorite flips the session's favorite state for a pin.
func (h *Handler) ToggleFavorite(c *gin.Context) {
	id, ok := pinID(c)
	if !ok {
		return
	}

	result, err := h.svc.ToggleFavorite(c.Request.Context(), id, httpkit.SessionID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListFavorites returns the session's favorited pins.
func (h *Handler) ListFavorites(c *gin.Context) {
	result, err := h.svc.ListFavorites(c.Request.Context(), httpkit.SessionID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
