package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"localist_backend/internal/events"
	"localist_backend/internal/pins/repository"
	"localist_backend/internal/pins/transport"
	"localist_backend/platform/apperr"
	"localist_backend/platform/logger"
)

type fakeRepo struct {
	pins      map[uuid.UUID]repository.Pin
	reviews   map[uuid.UUID][]repository.Review
	favorites map[uuid.UUID]map[string]bool
	category  repository.Category
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pins:      make(map[uuid.UUID]repository.Pin),
		reviews:   make(map[uuid.UUID][]repository.Review),
		favorites: make(map[uuid.UUID]map[string]bool),
		category:  repository.Category{ID: uuid.New(), Name: "Cafe", Icon: "coffee", Color: "#8e5a2d"},
	}
}

func (f *fakeRepo) GetAll(_ context.Context, ownerSession string) ([]repository.Pin, error) {
	var out []repository.Pin
	for _, p := range f.pins {
		if p.IsPublic || p.OwnerSession == ownerSession {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID, ownerSession string) (repository.PinDetails, error) {
	p, ok := f.pins[id]
	if !ok || (!p.IsPublic && p.OwnerSession != ownerSession) {
		return repository.PinDetails{}, apperr.NotFound("pin not found")
	}

	details := repository.PinDetails{Pin: p, Reviews: f.reviews[id]}
	var sum int
	for _, rev := range details.Reviews {
		sum += rev.Rating
	}
	if len(details.Reviews) > 0 {
		details.AverageRating = float64(sum) / float64(len(details.Reviews))
	}
	details.FavoritesCount = len(f.favorites[id])
	details.IsFavorited = f.favorites[id][ownerSession]
	return details, nil
}

func (f *fakeRepo) GetByBounds(_ context.Context, bounds repository.Bounds, ownerSession string) ([]repository.Pin, error) {
	var out []repository.Pin
	for _, p := range f.pins {
		if !p.IsPublic && p.OwnerSession != ownerSession {
			continue
		}
		if p.Latitude >= bounds.MinLat && p.Latitude <= bounds.MaxLat &&
			p.Longitude >= bounds.MinLon && p.Longitude <= bounds.MaxLon {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListCategories(context.Context) ([]repository.Category, error) {
	return []repository.Category{f.category}, nil
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Pin, error) {
	p := repository.Pin{
		ID:           uuid.New(),
		OwnerSession: params.OwnerSession,
		Category:     f.category,
		Name:         params.Name,
		Description:  params.Description,
		Latitude:     params.Latitude,
		Longitude:    params.Longitude,
		Address:      params.Address,
		Photos:       params.Photos,
		IsPublic:     params.IsPublic,
		OSMID:        params.OSMID,
		OSMType:      params.OSMType,
	}
	f.pins[p.ID] = p
	return p, nil
}

func (f *fakeRepo) Update(_ context.Context, params repository.UpdateParams) (repository.Pin, error) {
	p, ok := f.pins[params.ID]
	if !ok {
		return repository.Pin{}, apperr.NotFound("pin not found")
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Latitude != nil {
		p.Latitude = *params.Latitude
	}
	if params.Longitude != nil {
		p.Longitude = *params.Longitude
	}
	if params.Address != nil {
		p.Address = params.Address
	}
	if params.IsPublic != nil {
		p.IsPublic = *params.IsPublic
	}
	f.pins[params.ID] = p
	return p, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID, ownerSession string) error {
	p, ok := f.pins[id]
	if !ok || p.OwnerSession != ownerSession {
		return apperr.NotFound("pin not found")
	}
	delete(f.pins, id)
	return nil
}

func (f *fakeRepo) UpdateAddress(_ context.Context, id uuid.UUID, address string) error {
	p, ok := f.pins[id]
	if !ok {
		return nil
	}
	if p.Address == nil || *p.Address == "" {
		p.Address = &address
		f.pins[id] = p
	}
	return nil
}

func (f *fakeRepo) AddReview(_ context.Context, params repository.ReviewParams) (repository.Review, error) {
	rev := repository.Review{
		ID:           uuid.New(),
		PinID:        params.PinID,
		OwnerSession: params.OwnerSession,
		Rating:       params.Rating,
		Comment:      params.Comment,
		Photos:       params.Photos,
	}
	f.reviews[params.PinID] = append(f.reviews[params.PinID], rev)
	return rev, nil
}

func (f *fakeRepo) ToggleFavorite(_ context.Context, pinID uuid.UUID, ownerSession string) (bool, error) {
	if f.favorites[pinID] == nil {
		f.favorites[pinID] = make(map[string]bool)
	}
	if f.favorites[pinID][ownerSession] {
		delete(f.favorites[pinID], ownerSession)
		return false, nil
	}
	f.favorites[pinID][ownerSession] = true
	return true, nil
}

func (f *fakeRepo) ListFavorites(_ context.Context, ownerSession string) ([]repository.Pin, error) {
	var out []repository.Pin
	for pinID, sessions := range f.favorites {
		if sessions[ownerSession] {
			out = append(out, f.pins[pinID])
		}
	}
	return out, nil
}

var _ repository.Repository = (*fakeRepo)(nil)

type capturingHandler struct {
	events []events.Event
}

func (h *capturingHandler) Handle(_ context.Context, event events.Event) error {
	h.events = append(h.events, event)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *capturingHandler) {
	t.Helper()

	log := logger.New("development")
	repo := newFakeRepo()
	bus := events.NewInMemoryBus(log)
	captured := &capturingHandler{}
	bus.Subscribe(events.PinCreated{}.EventName(), captured)
	bus.Subscribe(events.PinUpdated{}.EventName(), captured)
	bus.Subscribe(events.PinDeleted{}.EventName(), captured)

	return New(repo, bus, log), repo, captured
}

func TestCreate_PublishesPinCreated(t *testing.T) {
	svc, repo, captured := newTestService(t)
	ctx := context.Background()

	pin, err := svc.Create(ctx, transport.CreatePinRequest{
		CategoryID: repo.category.ID,
		Name:       "Blue Cafe",
		Latitude:   -23.55,
		Longitude:  -46.63,
	}, "session-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(captured.events) != 1 {
		t.Fatalf("expected one event, got %d", len(captured.events))
	}
	created, ok := captured.events[0].(events.PinCreated)
	if !ok {
		t.Fatalf("expected PinCreated, got %T", captured.events[0])
	}
	if created.PinID != pin.ID {
		t.Fatalf("event pin id mismatch: %s vs %s", created.PinID, pin.ID)
	}
	if created.Location.Lat != -23.55 || created.Location.Lon != -46.63 {
		t.Fatalf("unexpected event location: %+v", created.Location)
	}
	if !pin.Mine {
		t.Fatal("creator must own the pin")
	}
}

func TestCreate_DefaultsToPublic(t *testing.T) {
	svc, repo, _ := newTestService(t)

	pin, err := svc.Create(context.Background(), transport.CreatePinRequest{
		CategoryID: repo.category.ID,
		Name:       "Blue Cafe",
	}, "session-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !pin.IsPublic {
		t.Fatal("expected pin public by default")
	}
}

func TestUpdate_RejectsForeignPin(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	pin, err := svc.Create(ctx, transport.CreatePinRequest{
		CategoryID: repo.category.ID,
		Name:       "Blue Cafe",
	}, "session-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Hijacked"
	_, err = svc.Update(ctx, pin.ID, transport.UpdatePinRequest{Name: &name}, "session-2")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found for foreign pin, got %v", err)
	}
}

func TestUpdate_MovedFlagTracksCoordinateChanges(t *testing.T) {
	svc, repo, captured := newTestService(t)
	ctx := context.Background()

	pin, err := svc.Create(ctx, transport.CreatePinRequest{
		CategoryID: repo.category.ID,
		Name:       "Blue Cafe",
	}, "session-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	lat := -23.56
	if _, err := svc.Update(ctx, pin.ID, transport.UpdatePinRequest{Latitude: &lat}, "session-1"); err != nil {
		t.Fatalf("update: %v", err)
	}

	updated, ok := captured.events[len(captured.events)-1].(events.PinUpdated)
	if !ok {
		t.Fatalf("expected PinUpdated, got %T", captured.events[len(captured.events)-1])
	}
	if !updated.Moved {
		t.Fatal("coordinate change must set Moved")
	}

	name := "Renamed"
	if _, err := svc.Update(ctx, pin.ID, transport.UpdatePinRequest{Name: &name}, "session-1"); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated = captured.events[len(captured.events)-1].(events.PinUpdated)
	if updated.Moved {
		t.Fatal("rename must not set Moved")
	}
}

func TestToggleFavorite_RoundTrip(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	pin, err := svc.Create(ctx, transport.CreatePinRequest{
		CategoryID: repo.category.ID,
		Name:       "Blue Cafe",
	}, "session-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fav, err := svc.ToggleFavorite(ctx, pin.ID, "session-2")
	if err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if !fav.Favorited {
		t.Fatal("first toggle must favorite")
	}

	fav, err = svc.ToggleFavorite(ctx, pin.ID, "session-2")
	if err != nil {
		t.Fatalf("unfavorite: %v", err)
	}
	if fav.Favorited {
		t.Fatal("second toggle must unfavorite")
	}
}

func TestGetByID_AggregatesReviews(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	pin, err := svc.Create(ctx, transport.CreatePinRequest{
		CategoryID: repo.category.ID,
		Name:       "Blue Cafe",
	}, "session-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, rating := range []int{5, 3} {
		if _, err := svc.AddReview(ctx, pin.ID, transport.AddReviewRequest{Rating: rating}, "session-2"); err != nil {
			t.Fatalf("review: %v", err)
		}
	}

	details, err := svc.GetByID(ctx, pin.ID, "session-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(details.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(details.Reviews))
	}
	if details.AverageRating != 4.0 {
		t.Fatalf("expected average 4.0, got %v", details.AverageRating)
	}
}

func TestDelete_PublishesPinDeleted(t *testing.T) {
	svc, repo, captured := newTestService(t)
	ctx := context.Background()

	pin, err := svc.Create(ctx, transport.CreatePinRequest{
		CategoryID: repo.category.ID,
		Name:       "Blue Cafe",
	}, "session-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, pin.ID, "session-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	deleted, ok := captured.events[len(captured.events)-1].(events.PinDeleted)
	if !ok {
		t.Fatalf("expected PinDeleted, got %T", captured.events[len(captured.events)-1])
	}
	if deleted.PinID != pin.ID {
		t.Fatal("event pin id mismatch")
	}
}
