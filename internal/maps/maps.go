// Package maps computes driving itineraries through the Google Maps
// Directions API.
package maps

import (
	"context"
	"fmt"
	"net/url"
	"time"

	gmaps "googlemaps.github.io/maps"

	"eva/internal/actions"
	"eva/internal/logger"
)

// Router implements actions.RouteService on top of the official Maps
// client.
type Router struct {
	client *gmaps.Client
}

func NewRouter(apiKey string) (*Router, error) {
	c, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &Router{client: c}, nil
}

// Directions returns the first driving route between origin and
// destination, with distance and duration as Google renders them.
func (r *Router) Directions(ctx context.Context, origin, destination string) (actions.Route, error) {
	req := &gmaps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        gmaps.TravelModeDriving,
		Language:    "fr",
	}
	routes, _, err := r.client.Directions(ctx, req)
	if err != nil {
		return actions.Route{}, fmt.Errorf("directions %s -> %s: %w", origin, destination, err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return actions.Route{}, fmt.Errorf("no route found from %s to %s", origin, destination)
	}

	leg := routes[0].Legs[0]
	logger.Debug("maps: %s -> %s is %s (%s)", origin, destination, leg.Distance.HumanReadable, leg.Duration)
	return actions.Route{
		Origin:      leg.StartAddress,
		Destination: leg.EndAddress,
		Distance:    leg.Distance.HumanReadable,
		Duration:    formatDuration(leg.Duration),
		MapURL:      embedURL(origin, destination),
	}, nil
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes() + 0.5)
	if mins < 60 {
		return fmt.Sprintf("%d min", mins)
	}
	return fmt.Sprintf("%dh%02d", mins/60, mins%60)
}

// embedURL builds the public Maps link shown in the itinerary panel.
func embedURL(origin, destination string) string {
	return "https://www.google.com/maps/dir/?api=1&origin=" +
		url.QueryEscape(origin) + "&destination=" + url.QueryEscape(destination)
}
