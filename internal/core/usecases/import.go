package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// importNamespace seeds deterministic ids so re-importing the same record
// replaces it instead of duplicating it.
var importNamespace = uuid.MustParse("3f1d6c52-8a4e-4b1f-9d0e-5c7a2b9e6f10")

// DefaultImportBatchSize is the number of listings written per batch.
const DefaultImportBatchSize = 500

// ImportRecord is one listing in a seed file. Image is an externally hosted
// photo URL and is stored as-is.
type ImportRecord struct {
	domain.ListingInput
	ID    string  `json:"id,omitempty"`
	Image *string `json:"image,omitempty"`
}

// ImportReport summarises a bulk import.
type ImportReport struct {
	Imported int
	Skipped  []string // "record N: reason"
}

// Import validates records and upserts the valid ones in batches. Invalid
// records are skipped and reported; a store error aborts the import.
func (s *ListingService) Import(ctx context.Context, records []ImportRecord, batchSize int) (ImportReport, error) {
	ctx, span := tracer.Start(ctx, "ListingService.Import")
	defer span.End()

	if batchSize <= 0 {
		batchSize = DefaultImportBatchSize
	}

	var report ImportReport
	batch := make([]domain.Listing, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.listings.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		report.Imported += len(batch)
		batch = batch[:0]
		return nil
	}

	now := time.Now().UTC()
	for i, rec := range records {
		l, err := s.importListing(rec, now)
		if err != nil {
			report.Skipped = append(report.Skipped, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		batch = append(batch, l)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return report, err
			}
		}
	}
	if err := flush(); err != nil {
		return report, err
	}

	if report.Imported > 0 {
		s.invalidate(ctx)
		if err := s.Publish(ctx, domain.ListingUpdated, ""); err != nil {
			return report, fmt.Errorf("publish import: %w", err)
		}
	}
	return report, nil
}

func (s *ListingService) importListing(rec ImportRecord, now time.Time) (domain.Listing, error) {
	in := rec.ListingInput.Trimmed()
	if err := s.validator.ValidateInput(in); err != nil {
		return domain.Listing{}, err
	}

	id := rec.ID
	if id == "" {
		key := in.Name + "|" + strconv.FormatFloat(in.Latitude, 'f', 6, 64) + "|" + strconv.FormatFloat(in.Longitude, 'f', 6, 64)
		id = uuid.NewSHA1(importNamespace, []byte(key)).String()
	} else if _, err := uuid.Parse(id); err != nil {
		return domain.Listing{}, errors.New("id is not a UUID")
	}

	l := domain.Listing{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		Image:        rec.Image,
		Location:     domain.GeoPoint{Lat: in.Latitude, Lon: in.Longitude},
		Price:        in.Price,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		PropertyType: in.PropertyType,
		Area:         in.Area,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	l.Geohash = geohash.EncodeWithPrecision(l.Location.Lat, l.Location.Lon, geohashPrecision)
	return l, nil
}
