package actions

import (
	"context"
	"fmt"

	"eva/internal/logger"
)

// Route is a computed itinerary.
type Route struct {
	Origin      string
	Destination string
	Distance    string
	Duration    string
	MapURL      string
}

// RouteService computes driving directions between two places.
type RouteService interface {
	Directions(ctx context.Context, origin, destination string) (Route, error)
}

type directionsHandler struct {
	svc           RouteService
	defaultOrigin string
}

// RegisterDirections wires the itinerary action into the registry.
// defaultOrigin is used when the command carries no origin entity.
func RegisterDirections(reg *Registry, svc RouteService, defaultOrigin string) {
	h := &directionsHandler{svc: svc, defaultOrigin: defaultOrigin}
	reg.Register("get_directions", h.get)
}

func (h *directionsHandler) get(ctx context.Context, ents Entities) Result {
	origin := ents.First("origin", "from")
	if origin == "" {
		origin = h.defaultOrigin
	}
	dest := ents.String("destination")

	route, err := h.svc.Directions(ctx, origin, dest)
	if err != nil {
		logger.Error("directions: %s -> %s: %v", origin, dest, err)
		return errorRecord(fmt.Sprintf("Désolé, je n'ai pas pu calculer l'itinéraire vers %s.", dest), nil)
	}
	return &Record{
		Status:  StatusSuccess,
		Summary: fmt.Sprintf("L'itinéraire vers %s fait %s, soit environ %s de route.", route.Destination, route.Distance, route.Duration),
		Fields: map[string]string{
			"origin":      route.Origin,
			"destination": route.Destination,
			"distance":    route.Distance,
			"duration":    route.Duration,
			"map_url":     route.MapURL,
		},
	}
}
