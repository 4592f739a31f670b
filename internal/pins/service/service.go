// Package service holds the pin business logic: persistence orchestration
// and domain event publication.
package service

import (
	"context"

	"github.com/google/uuid"

	"localist_backend/internal/events"
	"localist_backend/internal/geo"
	"localist_backend/internal/pins/repository"
	"localist_backend/internal/pins/transport"
	"localist_backend/platform/apperr"
	"localist_backend/platform/logger"
)

// Service provides business logic for pins.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new pins service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// GetAll returns every pin visible to the session, newest first.
func (s *Service) GetAll(ctx context.Context, ownerSession string) (transport.PinListResponse, error) {
	pins, err := s.repo.GetAll(ctx, ownerSession)
	if err != nil {
		return transport.PinListResponse{}, err
	}
	return transport.FromPins(pins, ownerSession), nil
}

// GetByID returns one pin with reviews and favorite aggregates.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, ownerSession string) (transport.PinDetailsResponse, error) {
	details, err := s.repo.GetByID(ctx, id, ownerSession)
	if err != nil {
		return transport.PinDetailsResponse{}, err
	}
	return transport.FromDetails(details, ownerSession), nil
}

// GetByBounds returns visible pins inside a viewport rectangle.
func (s *Service) GetByBounds(ctx context.Context, req transport.BoundsRequest, ownerSession string) (transport.PinListResponse, error) {
	pins, err := s.repo.GetByBounds(ctx, repository.Bounds{
		MinLat: req.MinLat,
		MaxLat: req.MaxLat,
		MinLon: req.MinLon,
		MaxLon: req.MaxLon,
	}, ownerSession)
	if err != nil {
		return transport.PinListResponse{}, err
	}
	return transport.FromPins(pins, ownerSession), nil
}

// ListCategories returns all pin categories.
func (s *Service) ListCategories(ctx context.Context) ([]transport.CategoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, transport.FromCategory(c))
	}
	return out, nil
}

// Create persists a new pin and publishes PinCreated. Pins created without
// an address get one filled in asynchronously by the reverse-geocode worker.
func (s *Service) Create(ctx context.Context, req transport.CreatePinRequest, ownerSession string) (transport.PinResponse, error) {
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	pin, err := s.repo.Create(ctx, repository.CreateParams{
		OwnerSession: ownerSession,
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Description:  req.Description,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Address:      req.Address,
		Photos:       req.Photos,
		IsPublic:     isPublic,
		OSMID:        req.OSMID,
		OSMType:      req.OSMType,
	})
	if err != nil {
		return transport.PinResponse{}, err
	}

	s.bus.Publish(ctx, events.PinCreated{
		BaseEvent: events.NewBaseEvent(),
		PinID:     pin.ID,
		Location:  geo.Point{Lat: pin.Latitude, Lon: pin.Longitude},
	})
	s.log.Info("pin created", "pin_id", pin.ID, "public", isPublic)

	return transport.FromPin(pin, ownerSession), nil
}

// Update changes a pin the session owns.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdatePinRequest, ownerSession string) (transport.PinResponse, error) {
	// Ownership check before touching the row.
	details, err := s.repo.GetByID(ctx, id, ownerSession)
	if err != nil {
		return transport.PinResponse{}, err
	}
	if details.OwnerSession != ownerSession {
		// Hide other sessions' pins rather than admitting they exist.
		return transport.PinResponse{}, apperr.NotFound("pin not found")
	}

	pin, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:          id,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return transport.PinResponse{}, err
	}

	moved := req.Latitude != nil || req.Longitude != nil
	s.bus.Publish(ctx, events.PinUpdated{
		BaseEvent: events.NewBaseEvent(),
		PinID:     pin.ID,
		Moved:     moved,
	})

	return transport.FromPin(pin, ownerSession), nil
}

// Delete removes a pin the session owns.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, ownerSession string) error {
	if err := s.repo.Delete(ctx, id, ownerSession); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.PinDeleted{
		BaseEvent: events.NewBaseEvent(),
		PinID:     id,
	})
	return nil
}

// AddReview records a review for a visible pin.
func (s *Service) AddReview(ctx context.Context, pinID uuid.UUID, req transport.AddReviewRequest, ownerSession string) (transport.ReviewResponse, error) {
	// The pin must exist and be visible to the reviewer.
	if _, err := s.repo.GetByID(ctx, pinID, ownerSession); err != nil {
		return transport.ReviewResponse{}, err
	}

	rev, err := s.repo.AddReview(ctx, repository.ReviewParams{
		PinID:        pinID,
		OwnerSession: ownerSession,
		Rating:       req.Rating,
		Comment:      req.Comment,
		Photos:       req.Photos,
	})
	if err != nil {
		return transport.ReviewResponse{}, err
	}

	photos := rev.Photos
	if photos == nil {
		photos = []string{}
	}
	return transport.ReviewResponse{
		ID:        rev.ID,
		PinID:     rev.PinID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		Photos:    photos,
		Upvotes:   rev.Upvotes,
		Mine:      true,
		CreatedAt: rev.CreatedAt,
	}, nil
}

// ToggleFavorite flips the favorite state for the session.
func (s *Service) ToggleFavorite(ctx context.Context, pinID uuid.UUID, ownerSession string) (transport.FavoriteResponse, error) {
	if _, err := s.repo.GetByID(ctx, pinID, ownerSession); err != nil {
		return transport.FavoriteResponse{}, err
	}

	favorited, err := s.repo.ToggleFavorite(ctx, pinID, ownerSession)
	if err != nil {
		return transport.FavoriteResponse{}, err
	}
	return transport.FavoriteResponse{PinID: pinID, Favorited: favorited}, nil
}

// ListFavorites returns the session's favorited pins.
func (s *Service) ListFavorites(ctx context.Context, ownerSession string) (transport.PinListResponse, error) {
	pins, err := s.repo.ListFavorites(ctx, ownerSession)
	if err != nil {
		return transport.PinListResponse{}, err
	}
	return transport.FromPins(pins, ownerSession), nil
}
