package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category is a pin category (icon + color metadata for rendering).
type Category struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}

// Pin is a saved place marker.
type Pin struct {
	ID           uuid.UUID `json:"id"`
	OwnerSession string    `json:"-"`
	Category     Category  `json:"category"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Address      *string   `json:"address"`
	Photos       []string  `json:"photos"`
	IsPublic     bool      `json:"isPublic"`
	OSMID        *int64    `json:"osmId"`
	OSMType      *string   `json:"osmType"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Review is one user review on a pin.
type Review struct {
	ID           uuid.UUID `json:"id"`
	PinID        uuid.UUID `json:"pinId"`
	OwnerSession string    `json:"-"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment"`
	Photos       []string  `json:"photos"`
	Upvotes      int       `json:"upvotes"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PinDetails is a pin with its reviews and favorite aggregates.
type PinDetails struct {
	Pin
	Reviews        []Review `json:"reviews"`
	FavoritesCount int      `json:"favoritesCount"`
	AverageRating  float64  `json:"averageRating"`
	IsFavorited    bool     `json:"isFavorited"`
}

// Bounds is a latitude/longitude viewport rectangle.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// CreateParams contains parameters for creating a pin.
type CreateParams struct {
	OwnerSession string
	CategoryID   uuid.UUID
	Name         string
	Description  *string
	Latitude     float64
	Longitude    float64
	Address      *string
	Photos       []string
	IsPublic     bool
	OSMID        *int64
	OSMType      *string
}

// UpdateParams contains parameters for updating a pin. Nil fields are left
// unchanged.
type UpdateParams struct {
	ID          uuid.UUID
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	Latitude    *float64
	Longitude   *float64
	Address     *string
	IsPublic    *bool
}

// ReviewParams contains parameters for adding a review.
type ReviewParams struct {
	PinID        uuid.UUID
	OwnerSession string
	Rating       int
	Comment      *string
	Photos       []string
}

// PinReader provides read operations for pins.
type PinReader interface {
	GetAll(ctx context.Context, ownerSession string) ([]Pin, error)
	GetByID(ctx context.Context, id uuid.UUID, ownerSession string) (PinDetails, error)
	GetByBounds(ctx context.Context, bounds Bounds, ownerSession string) ([]Pin, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// PinWriter provides write operations for pins.
type PinWriter interface {
	Create(ctx context.Context, params CreateParams) (Pin, error)
	Update(ctx context.Context, params UpdateParams) (Pin, error)
	Delete(ctx context.Context, id uuid.UUID, ownerSession string) error
	UpdateAddress(ctx context.Context, id uuid.UUID, address string) error
	AddReview(ctx context.Context, params ReviewParams) (Review, error)
	ToggleFavorite(ctx context.Context, pinID uuid.UUID, ownerSession string) (bool, error)
	ListFavorites(ctx context.Context, ownerSession string) ([]Pin, error)
}

// Repository combines all pin repository operations.
type Repository interface {
	PinReader
	PinWriter
}
