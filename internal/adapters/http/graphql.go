package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/mapnav/internal/core/domain"
	"github.com/samirrijal/mapnav/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	latLngType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LatLng",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	locationTypeEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "LocationType",
		Values: graphql.EnumValueConfigMap{
			"landmark":   &graphql.EnumValueConfig{Value: string(domain.TypeLandmark)},
			"restaurant": &graphql.EnumValueConfig{Value: string(domain.TypeRestaurant)},
			"hotel":      &graphql.EnumValueConfig{Value: string(domain.TypeHotel)},
			"other":      &graphql.EnumValueConfig{Value: string(domain.TypeOther)},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"latitude":    &graphql.Field{Type: graphql.Float},
			"longitude":   &graphql.Field{Type: graphql.Float},
			"description": &graphql.Field{Type: graphql.String},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
			"type": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if l, ok := p.Source.(domain.Location); ok {
						return string(l.Type), nil
					}
					if l, ok := p.Source.(*domain.Location); ok {
						return string(l.Type), nil
					}
					return nil, nil
				},
			},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"distance":    &graphql.Field{Type: graphql.String, Description: "Distance in km, two decimals"},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"start":       &graphql.Field{Type: latLngType},
			"end":         &graphql.Field{Type: latLngType},
			"geojson":     &graphql.Field{Type: graphql.String, Description: "GeoJSON LineString feature of the segment"},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"locations": &graphql.Field{
				Type:        graphql.NewList(locationType),
				Description: "List saved locations in insertion order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Locations.ListLocations(p.Context)
				},
			},
			"distance": &graphql.Field{
				Type:        routeType,
				Description: "Straight-line distance between two coordinates",
				Args: graphql.FieldConfigArgument{
					"startLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"startLng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"endLat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"endLng":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					start := domain.LatLng{Lat: p.Args["startLat"].(float64), Lng: p.Args["startLng"].(float64)}
					end := domain.LatLng{Lat: p.Args["endLat"].(float64), Lng: p.Args["endLng"].(float64)}
					r := deps.Distance.BuildRouteResult(start, end)
					feature, err := geospatial.RouteFeature(r).MarshalJSON()
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"geojson":     string(feature),
						"distance":    r.FormattedDistance(),
						"distance_km": r.DistanceKm,
						"start":       r.Start,
						"end":         r.End,
					}, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createLocation": &graphql.Field{
				Type:        locationType,
				Description: "Save a new location",
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"latitude":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"longitude":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"type":        &graphql.ArgumentConfig{Type: locationTypeEnum},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["latitude"].(float64)
					lng := p.Args["longitude"].(float64)
					in := domain.LocationInput{
						Name:      p.Args["name"].(string),
						Latitude:  &lat,
						Longitude: &lng,
					}
					if t, ok := p.Args["type"].(string); ok {
						in.Type = domain.LocationType(t)
					}
					if d, ok := p.Args["description"].(string); ok {
						in.Description = d
					}
					return deps.Locations.CreateLocation(p.Context, in)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
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
