package http

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	listingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Listing",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"name":          &graphql.Field{Type: graphql.String},
			"description":   &graphql.Field{Type: graphql.String},
			"image":         &graphql.Field{Type: graphql.String},
			"location":      &graphql.Field{Type: geoPointType},
			"price":         &graphql.Field{Type: graphql.Float},
			"bedrooms":      &graphql.Field{Type: graphql.Int},
			"bathrooms":     &graphql.Field{Type: graphql.Int},
			"property_type": &graphql.Field{Type: graphql.String},
			"area":          &graphql.Field{Type: graphql.Float},
			"geohash":       &graphql.Field{Type: graphql.String},
		},
	})

	geoPointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	criteriaInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CriteriaInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"min_price":     &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"max_price":     &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"bedrooms":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"bathrooms":     &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"min_area":      &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"property_type": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"title":         &graphql.InputObjectFieldConfig{Type: graphql.String},
			"description":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"listings": &graphql.Field{
				Type:        graphql.NewList(listingType),
				Description: "All listings in store order",
				Args: graphql.FieldConfigArgument{
					"property_type": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if t, ok := p.Args["property_type"].(string); ok && t != "" {
						return deps.Listings.ListByType(p.Context, t)
					}
					return deps.Listings.List(p.Context)
				},
			},
			"listing": &graphql.Field{
				Type:        listingType,
				Description: "Get a listing by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Listings.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"visibleListings": &graphql.Field{
				Type:        graphql.NewList(listingType),
				Description: "Listings passing the search, criteria, and drawn boundary",
				Args: graphql.FieldConfigArgument{
					"query":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"criteria": &graphql.ArgumentConfig{Type: criteriaInput},
					"boundary": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(geoPointInput))},
					"sort":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "none"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, err := visibleQueryFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					return deps.Explore.Visible(p.Context, q)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func visibleQueryFromArgs(args map[string]interface{}) (usecases.VisibleQuery, error) {
	var q usecases.VisibleQuery
	q.Query, _ = args["query"].(string)

	sortArg, _ := args["sort"].(string)
	sort, ok := domain.ParseSortOption(sortArg)
	if !ok {
		return q, queryError("sort must be one of none, price, area, bedrooms")
	}
	q.Sort = sort

	if crit, ok := args["criteria"].(map[string]interface{}); ok {
		minP, hasMin := crit["min_price"].(float64)
		maxP, hasMax := crit["max_price"].(float64)
		if hasMin || hasMax {
			r := domain.PriceRange{Low: 0, High: math.MaxFloat64}
			if hasMin {
				r.Low = minP
			}
			if hasMax {
				r.High = maxP
			}
			q.Price = &r
		}
		if v, ok := crit["bedrooms"].(int); ok {
			q.Criteria.Bedrooms = &v
		}
		if v, ok := crit["bathrooms"].(int); ok {
			q.Criteria.Bathrooms = &v
		}
		if v, ok := crit["min_area"].(float64); ok {
			q.Criteria.MinArea = &v
		}
		if v, ok := crit["property_type"].(string); ok && v != "" {
			q.Criteria.PropertyType = &v
		}
		q.Criteria.Title, _ = crit["title"].(string)
		q.Criteria.Description, _ = crit["description"].(string)
	}

	if pts, ok := args["boundary"].([]interface{}); ok {
		b := &domain.Boundary{}
		for _, raw := range pts {
			m, _ := raw.(map[string]interface{})
			lat, _ := m["lat"].(float64)
			lon, _ := m["lon"].(float64)
			b.Vertices = append(b.Vertices, domain.GeoPoint{Lat: lat, Lon: lon})
		}
		q.Boundary = b
	}
	return q, nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
