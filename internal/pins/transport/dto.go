package transport

import (
	"time"

	"github.com/google/uuid"

	"localist_backend/internal/pins/repository"
)

type CreatePinRequest struct {
	CategoryID  uuid.UUID `json:"categoryId" validate:"required"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	Latitude    float64   `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64   `json:"longitude" validate:"min=-180,max=180"`
	Address     *string   `json:"address" validate:"omitempty,max=500"`
	Photos      []string  `json:"photos" validate:"omitempty,dive,url"`
	IsPublic    *bool     `json:"isPublic"`
	OSMID       *int64    `json:"osmId"`
	OSMType     *string   `json:"osmType"`
}

type UpdatePinRequest struct {
	CategoryID  *uuid.UUID `json:"categoryId"`
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Latitude    *float64   `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64   `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Address     *string    `json:"address" validate:"omitempty,max=500"`
	IsPublic    *bool      `json:"isPublic"`
}

type BoundsRequest struct {
	MinLat float64 `form:"minLat" validate:"min=-90,max=90"`
	MaxLat float64 `form:"maxLat" validate:"min=-90,max=90"`
	MinLon float64 `form:"minLon" validate:"min=-180,max=180"`
	MaxLon float64 `form:"maxLon" validate:"min=-180,max=180"`
}

type AddReviewRequest struct {
	Rating  int      `json:"rating" validate:"required,min=1,max=5"`
	Comment *string  `json:"comment" validate:"omitempty,max=2000"`
	Photos  []string `json:"photos" validate:"omitempty,dive,url"`
}

type CategoryResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}

type PinResponse struct {
	ID          uuid.UUID        `json:"id"`
	Category    CategoryResponse `json:"category"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Latitude    float64          `json:"latitude"`
	Longitude   float64          `json:"longitude"`
	Address     *string          `json:"address"`
	Photos      []string         `json:"photos"`
	IsPublic    bool             `json:"isPublic"`
	OSMID       *int64           `json:"osmId,omitempty"`
	OSMType     *string          `json:"osmType,omitempty"`
	Mine        bool             `json:"mine"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	PinID     uuid.UUID `json:"pinId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	Photos    []string  `json:"photos"`
	Upvotes   int       `json:"upvotes"`
	Mine      bool      `json:"mine"`
	CreatedAt time.Time `json:"createdAt"`
}

type PinDetailsResponse struct {
	PinResponse
	Reviews        []ReviewResponse `json:"reviews"`
	FavoritesCount int              `json:"favoritesCount"`
	AverageRating  float64          `json:"averageRating"`
	IsFavorited    bool             `json:"isFavorited"`
}

type PinListResponse struct {
	Pins  []PinResponse `json:"pins"`
	Total int           `json:"total"`
}

type FavoriteResponse struct {
	PinID     uuid.UUID `json:"pinId"`
	Favorited bool      `json:"favorited"`
}

func FromCategory(c repository.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color}
}

func FromPin(p repository.Pin, ownerSession string) PinResponse {
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}
	return PinResponse{
		ID:          p.ID,
		Category:    FromCategory(p.Category),
		Name:        p.Name,
		Description: p.Description,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Address:     p.Address,
		Photos:      photos,
		IsPublic:    p.IsPublic,
		OSMID:       p.OSMID,
		OSMType:     p.OSMType,
		Mine:        p.OwnerSession == ownerSession,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromPins(pins []repository.Pin, ownerSession string) PinListResponse {
	out := PinListResponse{Pins: make([]PinResponse, 0, len(pins)), Total: len(pins)}
	for _, p := range pins {
		out.Pins = append(out.Pins, FromPin(p, ownerSession))
	}
	return out
}

func FromDetails(d repository.PinDetails, ownerSession string) PinDetailsResponse {
	reviews := make([]ReviewResponse, 0, len(d.Reviews))
	for _, rev := range d.Reviews {
		photos := rev.Photos
		if photos == nil {
			photos = []string{}
		}
		reviews = append(reviews, ReviewResponse{
			ID:        rev.ID,
			PinID:     rev.PinID,
			Rating:    rev.Rating,
			Comment:   rev.Comment,
			Photos:    photos,
			Upvotes:   rev.Upvotes,
			Mine:      rev.OwnerSession == ownerSession,
			CreatedAt: rev.CreatedAt,
		})
	}
	return PinDetailsResponse{
		PinResponse:    FromPin(d.Pin, ownerSession),
		Reviews:        reviews,
		FavoritesCount: d.FavoritesCount,
		AverageRating:  d.AverageRating,
		IsFavorited:    d.IsFavorited,
	}
}
