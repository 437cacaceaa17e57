package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/propmap/internal/core/domain"
)

const listingColumns = `id, name, description, image, lat, lon, price, bedrooms, bathrooms,
	property_type, area, geohash, created_at, updated_at`

const upsertListingSQL = `
	INSERT INTO listings (id, name, description, image, lat, lon, price, bedrooms, bathrooms,
	                      property_type, area, geohash, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, description = EXCLUDED.description, image = EXCLUDED.image,
	    lat = EXCLUDED.lat, lon = EXCLUDED.lon, price = EXCLUDED.price,
	    bedrooms = EXCLUDED.bedrooms, bathrooms = EXCLUDED.bathrooms,
	    property_type = EXCLUDED.property_type, area = EXCLUDED.area,
	    geohash = EXCLUDED.geohash, updated_at = EXCLUDED.updated_at
`

// ListingRepo implements ports.ListingRepository with pgx.
type ListingRepo struct {
	db *DB
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(db *DB) *ListingRepo {
	return &ListingRepo{db: db}
}

// Create inserts a new listing.
func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO listings (id, name, description, image, lat, lon, price, bedrooms, bathrooms,
		                      property_type, area, geohash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, listingArgs(l)...)
	return err
}

// Update overwrites every field of an existing listing.
func (r *ListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE listings
		SET name = $2, description = $3, image = $4, lat = $5, lon = $6, price = $7,
		    bedrooms = $8, bathrooms = $9, property_type = $10, area = $11,
		    geohash = $12, updated_at = $13
		WHERE id = $1
	`, l.ID, l.Name, l.Description, l.Image, l.Location.Lat, l.Location.Lon,
		l.Price, l.Bedrooms, l.Bathrooms, l.PropertyType, l.Area, l.Geohash, l.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpsertBatch inserts or replaces many listings using pgx.Batch.
func (r *ListingRepo) UpsertBatch(ctx context.Context, listings []domain.Listing) error {
	batch := &pgx.Batch{}
	for i := range listings {
		batch.Queue(upsertListingSQL, listingArgs(&listings[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range listings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a listing by UUID.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

// List returns every listing, oldest first.
func (r *ListingRepo) List(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// ListByField returns listings by property type or geohash prefix.
func (r *ListingRepo) ListByField(ctx context.Context, field, value string) ([]domain.Listing, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch field {
	case "property_type":
		rows, err = r.db.Pool.Query(ctx, `
			SELECT `+listingColumns+` FROM listings
			WHERE property_type = $1 ORDER BY created_at, id
		`, value)
	case "geohash":
		rows, err = r.db.Pool.Query(ctx, `
			SELECT `+listingColumns+` FROM listings
			WHERE geohash LIKE $1 || '%' ORDER BY created_at, id
		`, value)
	default:
		return nil, fmt.Errorf("unsupported listing field %q", field)
	}
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// Delete removes a listing.
func (r *ListingRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func listingArgs(l *domain.Listing) []any {
	return []any{
		l.ID, l.Name, l.Description, l.Image, l.Location.Lat, l.Location.Lon,
		l.Price, l.Bedrooms, l.Bathrooms, l.PropertyType, l.Area, l.Geohash,
		l.CreatedAt, l.UpdatedAt,
	}
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.Name, &l.Description, &l.Image, &l.Location.Lat, &l.Location.Lon,
		&l.Price, &l.Bedrooms, &l.Bathrooms, &l.PropertyType, &l.Area, &l.Geohash,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectListings(rows pgx.Rows) ([]domain.Listing, error) {
	defer rows.Close()
	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}
