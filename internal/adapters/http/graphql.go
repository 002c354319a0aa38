package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

// partnerToMap flattens a partner for graphql-go, which resolves map keys.
func partnerToMap(p *domain.Partner) (map[string]any, error) {
	m := map[string]any{
		"id":           p.ID,
		"name":         p.Name,
		"street":       p.Street,
		"zip":          p.Zip,
		"city":         p.City,
		"country_code": p.CountryCode,
		"latitude":     p.Latitude,
		"longitude":    p.Longitude,
		"location_wkt": p.Location.WKT(),
	}
	if p.DateLocalization != nil {
		m["date_localization"] = p.DateLocalization.Format("2006-01-02")
	}
	if p.Distance != nil {
		m["distance"] = *p.Distance
	}
	if !p.Location.IsEmpty() {
		gj, err := p.Location.GeoJSON()
		if err != nil {
			return nil, err
		}
		m["location"] = string(gj)
	}
	return m, nil
}

func partnersToMaps(ps []domain.Partner) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(ps))
	for i := range ps {
		m, err := partnerToMap(&ps[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// toMaps converts tagged structs into maps keyed by their JSON names.
func toMaps(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	partnerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Partner",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"name":              &graphql.Field{Type: graphql.String},
			"street":            &graphql.Field{Type: graphql.String},
			"zip":               &graphql.Field{Type: graphql.String},
			"city":              &graphql.Field{Type: graphql.String},
			"country_code":      &graphql.Field{Type: graphql.String},
			"latitude":          &graphql.Field{Type: graphql.Float},
			"longitude":         &graphql.Field{Type: graphql.Float},
			"date_localization": &graphql.Field{Type: graphql.String},
			"distance":          &graphql.Field{Type: graphql.Float},
			"location":          &graphql.Field{Type: graphql.String, Description: "GeoJSON geometry"},
			"location_wkt":      &graphql.Field{Type: graphql.String},
		},
	})

	rasterType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RasterLayer",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"view":         &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
			"type":         &graphql.Field{Type: graphql.String},
			"url":          &graphql.Field{Type: graphql.String},
			"matrix_set":   &graphql.Field{Type: graphql.String},
			"format":       &graphql.Field{Type: graphql.String},
			"opacity":      &graphql.Field{Type: graphql.Float},
			"overlay":      &graphql.Field{Type: graphql.Boolean},
			"sequence":     &graphql.Field{Type: graphql.Int},
			"mapbox_style": &graphql.Field{Type: graphql.String},
		},
	})

	vectorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "VectorLayer",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"view":            &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"geo_field":       &graphql.Field{Type: graphql.String},
			"representation":  &graphql.Field{Type: graphql.String},
			"attribute_field": &graphql.Field{Type: graphql.String},
			"begin_color":     &graphql.Field{Type: graphql.String},
			"end_color":       &graphql.Field{Type: graphql.String},
			"classification":  &graphql.Field{Type: graphql.String},
			"classes":         &graphql.Field{Type: graphql.Int},
			"active":          &graphql.Field{Type: graphql.Boolean},
			"sequence":        &graphql.Field{Type: graphql.Int},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SessionInfo",
		Fields: graphql.Fields{
			"server_version": &graphql.Field{Type: graphql.String},
			"srid":           &graphql.Field{Type: graphql.Int},
			"mapbox_token":   &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"partner": &graphql.Field{
				Type:        partnerType,
				Description: "Get a partner by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					partner, err := deps.Partners.GetByID(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return partnerToMap(partner)
				},
			},
			"nearbyPartners": &graphql.Field{
				Type:        graphql.NewList(partnerType),
				Description: "Find located partners near a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					center := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					partners, err := deps.Partners.FindNearby(p.Context, center, p.Args["radius"].(float64), p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					return partnersToMaps(partners)
				},
			},
			"rasterLayers": &graphql.Field{
				Type: graphql.NewList(rasterType),
				Args: graphql.FieldConfigArgument{
					"view": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					layers, err := deps.Layers.ListRaster(p.Context, p.Args["view"].(string))
					if err != nil {
						return nil, err
					}
					return toMaps(layers)
				},
			},
			"vectorLayers": &graphql.Field{
				Type: graphql.NewList(vectorType),
				Args: graphql.FieldConfigArgument{
					"view": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					layers, err := deps.Layers.ListVector(p.Context, p.Args["view"].(string))
					if err != nil {
						return nil, err
					}
					return toMaps(layers)
				},
			},
			"sessionInfo": &graphql.Field{
				Type: sessionType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					info, err := deps.Settings.SessionInfo(p.Context)
					if err != nil {
						return nil, err
					}
					return map[string]any{
						"server_version": info.Version,
						"srid":           info.SRID,
						"mapbox_token":   info.MapboxToken,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
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
