package http

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/usecases"
)

// SessionResponse wraps an explore snapshot with its session id.
type SessionResponse struct {
	ID       string          `json:"id"`
	Applied  bool            `json:"applied"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

// OpenSessionHandler starts an explore session.
func OpenSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, snap, err := deps.Explore.Open(c.UserContext())
		if err != nil {
			return errFromService(c, err)
		}
		c.Location("/v1/explore/sessions/" + id)
		return c.Status(fiber.StatusCreated).JSON(SessionResponse{ID: id, Applied: true, Snapshot: snap})
	}
}

// GetSessionHandler returns the current snapshot of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		snap, err := deps.Explore.Get(id)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(SessionResponse{ID: id, Applied: true, Snapshot: snap})
	}
}

// CloseSessionHandler discards a session.
func CloseSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Explore.Close(c.Params("id")); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ApplyCommandHandler applies one UI command to a session.
func ApplyCommandHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cmd domain.Command
		if err := c.BodyParser(&cmd); err != nil {
			return errBadRequest(c, "invalid command body")
		}

		id := c.Params("id")
		snap, applied, err := deps.Explore.Apply(c.UserContext(), id, cmd)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(SessionResponse{ID: id, Applied: applied, Snapshot: snap})
	}
}

// VisibleHandler computes a visible set from query parameters without
// creating a session.
//
//	q, min_price, max_price, bedrooms, bathrooms, min_area, type, title,
//	description, sort, boundary=lat,lon;lat,lon;...
func VisibleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseVisibleQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		listings, err := deps.Explore.Visible(c.UserContext(), q)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(fiber.Map{"count": len(listings), "visible": listings})
	}
}

type queryError string

func (e queryError) Error() string { return string(e) }

func parseVisibleQuery(c *fiber.Ctx) (usecases.VisibleQuery, error) {
	q := usecases.VisibleQuery{
		Query: c.Query("q"),
		Criteria: domain.FilterCriteria{
			Title:       c.Query("title"),
			Description: c.Query("description"),
		},
	}

	minPrice, hasMin := c.Query("min_price"), c.Query("min_price") != ""
	maxPrice, hasMax := c.Query("max_price"), c.Query("max_price") != ""
	if hasMin || hasMax {
		r := domain.PriceRange{Low: 0, High: math.MaxFloat64}
		if hasMin {
			v, err := strconv.ParseFloat(minPrice, 64)
			if err != nil {
				return q, queryError("min_price must be a number")
			}
			r.Low = v
		}
		if hasMax {
			v, err := strconv.ParseFloat(maxPrice, 64)
			if err != nil {
				return q, queryError("max_price must be a number")
			}
			r.High = v
		}
		q.Price = &r
	}

	for name, dst := range map[string]**int{"bedrooms": &q.Criteria.Bedrooms, "bathrooms": &q.Criteria.Bathrooms} {
		if s := c.Query(name); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return q, queryError(name + " must be an integer")
			}
			*dst = &v
		}
	}
	if s := c.Query("min_area"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, queryError("min_area must be a number")
		}
		q.Criteria.MinArea = &v
	}
	if t := c.Query("type"); t != "" {
		q.Criteria.PropertyType = &t
	}

	sort, ok := domain.ParseSortOption(c.Query("sort"))
	if !ok {
		return q, queryError("sort must be one of none, price, area, bedrooms")
	}
	q.Sort = sort

	if s := c.Query("boundary"); s != "" {
		b, err := parseBoundary(s)
		if err != nil {
			return q, err
		}
		q.Boundary = b
	}
	return q, nil
}

// parseBoundary reads "lat,lon;lat,lon;..." into a boundary.
func parseBoundary(s string) (*domain.Boundary, error) {
	var b domain.Boundary
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		latStr, lonStr, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, queryError("boundary vertices must be lat,lon pairs")
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		p := domain.GeoPoint{Lat: lat, Lon: lon}
		if err1 != nil || err2 != nil || !p.Valid() {
			return nil, queryError("invalid boundary vertex " + pair)
		}
		b.Vertices = append(b.Vertices, p)
	}
	return &b, nil
}
