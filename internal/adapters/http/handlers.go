package http

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/usecases"
)

// ListListingsHandler returns the listing collection, optionally restricted
// to one property type.
func ListListingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			listings []domain.Listing
			err      error
		)
		if t := c.Query("type"); t != "" {
			listings, err = deps.Listings.ListByType(c.UserContext(), t)
		} else {
			listings, err = deps.Listings.List(c.UserContext())
		}
		if err != nil {
			return errFromService(c, err)
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		total := len(listings)
		page := []domain.Listing{}
		if offset < total {
			page = listings[offset:min(offset+limit, total)]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetListingHandler returns a single listing by ID.
func GetListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := deps.Listings.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(l)
	}
}

// NearbyListingsHandler returns listings within a radius of a point.
func NearbyListingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 50)

		if !(domain.GeoPoint{Lat: lat, Lon: lon}).Valid() {
			return errBadRequest(c, "lat must be within ±90 and lon within ±180")
		}
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}

		listings, err := deps.Listings.Nearby(c.UserContext(), lat, lon, radius, limit)
		if err != nil {
			return errFromService(c, err)
		}
		if listings == nil {
			listings = []domain.Listing{}
		}

		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(listings)
	}
}

// FacetsHandler summarises the collection for filter controls.
func FacetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := deps.Listings.Facets(c.UserContext())
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(f)
	}
}

// CreateListingHandler accepts a multipart form with a JSON "data" field and
// an "image" file.
func CreateListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.FormValue("data")
		if raw == "" {
			return errBadRequest(c, "data field is required")
		}
		var in domain.ListingInput
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			return errBadRequest(c, "data must be a JSON listing: "+err.Error())
		}

		img, err := readImage(c, deps.MaxImageBytes)
		if err != nil {
			return errFromService(c, err)
		}

		l, err := deps.Listings.Create(c.UserContext(), in, img)
		if err != nil {
			return errFromService(c, err)
		}

		c.Location("/v1/listings/" + l.ID)
		return c.Status(fiber.StatusCreated).JSON(l)
	}
}

// UpdateListingHandler applies a partial update. It accepts either a JSON
// body or a multipart form with a "data" field and an optional "image".
func UpdateListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			patch domain.ListingPatch
			img   *usecases.ImageUpload
		)

		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			if raw := c.FormValue("data"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &patch); err != nil {
					return errBadRequest(c, "data must be a JSON patch: "+err.Error())
				}
			}
			var err error
			if img, err = readImage(c, deps.MaxImageBytes); err != nil {
				return errFromService(c, err)
			}
		} else if err := json.Unmarshal(c.Body(), &patch); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		l, err := deps.Listings.Update(c.UserContext(), c.Params("id"), patch, img)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(l)
	}
}

// DeleteListingHandler removes a listing. With ?async=true and a removal
// scheduler configured, the removal runs as a workflow and 202 is returned.
func DeleteListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		if c.QueryBool("async") && deps.Removals != nil {
			if _, err := deps.Listings.GetByID(c.UserContext(), id); err != nil {
				return errFromService(c, err)
			}
			runID, err := deps.Removals.ScheduleListingRemoval(c.UserContext(), id)
			if err != nil {
				return errFromService(c, fmt.Errorf("schedule removal: %w", err))
			}
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"listing_id":  id,
				"workflow_id": runID,
			})
		}

		if err := deps.Listings.Delete(c.UserContext(), id); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetImageHandler serves a stored listing image.
func GetImageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		img, err := deps.Listings.GetImage(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		c.Set(fiber.HeaderContentType, img.ContentType)
		c.Set("Cache-Control", "public, max-age=31536000, immutable")
		return c.Send(img.Data)
	}
}

// readImage returns the "image" form file, or nil when none was sent.
func readImage(c *fiber.Ctx, maxBytes int64) (*usecases.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	if maxBytes <= 0 {
		maxBytes = usecases.DefaultMaxImageBytes
	}
	if fh.Size > maxBytes {
		return nil, domain.ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &usecases.ImageUpload{ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}
