package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"localist_backend/platform/apperr"
)

const pinNotFoundMessage = "pin not found"

const pinColumns = `
	p.id, p.owner_session, p.name, p.description, p.latitude, p.longitude,
	p.address, p.photos, p.is_public, p.osm_id, p.osm_type, p.created_at, p.updated_at,
	c.id, c.name, c.icon, c.color`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new pins repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanPin(row pgx.Row) (Pin, error) {
	var p Pin
	err := row.Scan(
		&p.ID, &p.OwnerSession, &p.Name, &p.Description, &p.Latitude, &p.Longitude,
		&p.Address, &p.Photos, &p.IsPublic, &p.OSMID, &p.OSMType, &p.CreatedAt, &p.UpdatedAt,
		&p.Category.ID, &p.Category.Name, &p.Category.Icon, &p.Category.Color,
	)
	return p, err
}

func collectPins(rows pgx.Rows) ([]Pin, error) {
	defer rows.Close()

	var pins []Pin
	for rows.Next() {
		p, err := scanPin(rows)
		if err != nil {
			return nil, err
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}

// GetAll returns public pins plus the session's own private pins, newest first.
func (r *Repo) GetAll(ctx context.Context, ownerSession string) ([]Pin, error) {
	query := `
		SELECT` + pinColumns + `
		FROM map_pins p
		JOIN map_pin_categories c ON c.id = p.category_id
		WHERE p.is_public = true OR p.owner_session = $1
		ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerSession)
	if err != nil {
		return nil, fmt.Errorf("get all pins: %w", err)
	}

	pins, err := collectPins(rows)
	if err != nil {
		return nil, fmt.Errorf("get all pins: %w", err)
	}
	return pins, nil
}

// GetByID returns one pin with its reviews, favorites count and average rating.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID, ownerSession string) (PinDetails, error) {
	query := `
		SELECT` + pinColumns + `
		FROM map_pins p
		JOIN map_pin_categories c ON c.id = p.category_id
		WHERE p.id = $1 AND (p.is_public = true OR p.owner_session = $2)`

	pin, err := scanPin(r.pool.QueryRow(ctx, query, id, ownerSession))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PinDetails{}, apperr.NotFound(pinNotFoundMessage)
		}
		return PinDetails{}, fmt.Errorf("get pin by id: %w", err)
	}

	details := PinDetails{Pin: pin, Reviews: []Review{}}

	reviewQuery := `
		SELECT id, pin_id, owner_session, rating, comment, photos, upvotes, created_at
		FROM map_reviews
		WHERE pin_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, reviewQuery, id)
	if err != nil {
		return PinDetails{}, fmt.Errorf("get pin reviews: %w", err)
	}
	defer rows.Close()

	var ratingSum int
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.PinID, &rev.OwnerSession, &rev.Rating, &rev.Comment, &rev.Photos, &rev.Upvotes, &rev.CreatedAt); err != nil {
			return PinDetails{}, fmt.Errorf("get pin reviews: %w", err)
		}
		ratingSum += rev.Rating
		details.Reviews = append(details.Reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return PinDetails{}, fmt.Errorf("get pin reviews: %w", err)
	}
	if len(details.Reviews) > 0 {
		details.AverageRating = float64(ratingSum) / float64(len(details.Reviews))
	}

	favQuery := `
		SELECT
			count(*),
			count(*) FILTER (WHERE owner_session = $2) > 0
		FROM map_favorites
		WHERE pin_id = $1`

	if err := r.pool.QueryRow(ctx, favQuery, id, ownerSession).Scan(&details.FavoritesCount, &details.IsFavorited); err != nil {
		return PinDetails{}, fmt.Errorf("get pin favorites: %w", err)
	}

	return details, nil
}

// GetByBounds returns visible pins inside the viewport rectangle.
func (r *Repo) GetByBounds(ctx context.Context, bounds Bounds, ownerSession string) ([]Pin, error) {
	query := `
		SELECT` + pinColumns + `
		FROM map_pins p
		JOIN map_pin_categories c ON c.id = p.category_id
		WHERE p.latitude BETWEEN $1 AND $2
		  AND p.longitude BETWEEN $3 AND $4
		  AND (p.is_public = true OR p.owner_session = $5)`

	rows, err := r.pool.Query(ctx, query, bounds.MinLat, bounds.MaxLat, bounds.MinLon, bounds.MaxLon, ownerSession)
	if err != nil {
		return nil, fmt.Errorf("get pins by bounds: %w", err)
	}

	pins, err := collectPins(rows)
	if err != nil {
		return nil, fmt.Errorf("get pins by bounds: %w", err)
	}
	return pins, nil
}

// ListCategories returns all pin categories.
func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, icon, color FROM map_pin_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Create inserts a pin and returns it with its category joined.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Pin, error) {
	photos := params.Photos
	if photos == nil {
		photos = []string{}
	}

	query := `
		INSERT INTO map_pins (owner_session, category_id, name, description, latitude, longitude, address, photos, is_public, osm_id, osm_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		params.OwnerSession, params.CategoryID, params.Name, params.Description,
		params.Latitude, params.Longitude, params.Address, photos, params.IsPublic,
		params.OSMID, params.OSMType,
	).Scan(&id)
	if err != nil {
		return Pin{}, fmt.Errorf("create pin: %w", err)
	}

	details, err := r.GetByID(ctx, id, params.OwnerSession)
	if err != nil {
		return Pin{}, err
	}
	return details.Pin, nil
}

// Update applies the non-nil fields of params and returns the updated pin.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Pin, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{params.ID}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.CategoryID != nil {
		addSet("category_id", *params.CategoryID)
	}
	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.Description != nil {
		addSet("description", *params.Description)
	}
	if params.Latitude != nil {
		addSet("latitude", *params.Latitude)
	}
	if params.Longitude != nil {
		addSet("longitude", *params.Longitude)
	}
	if params.Address != nil {
		addSet("address", *params.Address)
	}
	if params.IsPublic != nil {
		addSet("is_public", *params.IsPublic)
	}

	query := fmt.Sprintf(`UPDATE map_pins SET %s WHERE id = $1 RETURNING owner_session`, strings.Join(sets, ", "))

	var ownerSession string
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&ownerSession); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Pin{}, apperr.NotFound(pinNotFoundMessage)
		}
		return Pin{}, fmt.Errorf("update pin: %w", err)
	}

	details, err := r.GetByID(ctx, params.ID, ownerSession)
	if err != nil {
		return Pin{}, err
	}
	return details.Pin, nil
}

// Delete removes the session's own pin.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID, ownerSession string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM map_pins WHERE id = $1 AND owner_session = $2`, id, ownerSession)
	if err != nil {
		return fmt.Errorf("delete pin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(pinNotFoundMessage)
	}
	return nil
}

// UpdateAddress fills in the reverse-geocoded address. Used by the worker;
// never overwrites an address the user typed themselves.
func (r *Repo) UpdateAddress(ctx context.Context, id uuid.UUID, address string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE map_pins SET address = $2, updated_at = now() WHERE id = $1 AND (address IS NULL OR address = '')`,
		id, address,
	)
	if err != nil {
		return fmt.Errorf("update pin address: %w", err)
	}
	return nil
}

// AddReview inserts a review for a pin.
func (r *Repo) AddReview(ctx context.Context, params ReviewParams) (Review, error) {
	photos := params.Photos
	if photos == nil {
		photos = []string{}
	}

	query := `
		INSERT INTO map_reviews (pin_id, owner_session, rating, comment, photos)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, pin_id, owner_session, rating, comment, photos, upvotes, created_at`

	var rev Review
	err := r.pool.QueryRow(ctx, query, params.PinID, params.OwnerSession, params.Rating, params.Comment, photos).
		Scan(&rev.ID, &rev.PinID, &rev.OwnerSession, &rev.Rating, &rev.Comment, &rev.Photos, &rev.Upvotes, &rev.CreatedAt)
	if err != nil {
		return Review{}, fmt.Errorf("add review: %w", err)
	}
	return rev, nil
}

// ToggleFavorite flips the favorite state and reports whether the pin is now
// favorited.
func (r *Repo) ToggleFavorite(ctx context.Context, pinID uuid.UUID, ownerSession string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM map_favorites WHERE pin_id = $1 AND owner_session = $2`,
		pinID, ownerSession,
	)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO map_favorites (pin_id, owner_session) VALUES ($1, $2)`,
		pinID, ownerSession,
	)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return true, nil
}

// ListFavorites returns the session's favorited pins, most recently
// favorited first.
func (r *Repo) ListFavorites(ctx context.Context, ownerSession string) ([]Pin, error) {
	query := `
		SELECT` + pinColumns + `
		FROM map_favorites f
		JOIN map_pins p ON p.id = f.pin_id
		JOIN map_pin_categories c ON c.id = p.category_id
		WHERE f.owner_session = $1
		ORDER BY f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerSession)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	pins, err := collectPins(rows)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return pins, nil
}
