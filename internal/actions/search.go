package actions

import (
	"context"
	"fmt"
	"strings"

	"eva/internal/logger"
	"eva/internal/search"
)

// SearchEngine runs a web query and returns ranked results.
type SearchEngine interface {
	Search(ctx context.Context, query string) ([]search.Item, error)
}

// WeatherService returns a short textual forecast for a place.
type WeatherService interface {
	Forecast(ctx context.Context, place string) (string, error)
}

type searchHandlers struct {
	engine       SearchEngine
	weather      WeatherService
	defaultPlace string
}

// RegisterSearch wires the web-search and weather actions into the
// registry.
func RegisterSearch(reg *Registry, engine SearchEngine, weather WeatherService, defaultPlace string) {
	h := &searchHandlers{engine: engine, weather: weather, defaultPlace: defaultPlace}
	reg.Register("web_search", h.web)
	reg.Register("get_weather_forecast", h.forecast)
}

func (h *searchHandlers) web(ctx context.Context, ents Entities) Result {
	query := ents.First("query", "q")
	items, err := h.engine.Search(ctx, query)
	if err != nil {
		logger.Error("search: %q: %v", query, err)
		return errorRecord("Désolé, la recherche web a échoué.", nil)
	}
	if len(items) == 0 {
		return &Record{Status: StatusNotFound, Summary: fmt.Sprintf("Je n'ai trouvé aucun résultat pour « %s ».", query)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Voici ce que j'ai trouvé pour « %s » :\n", query)
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\n  %s\n", it.Title, it.Snippet)
	}
	return &Record{Status: StatusSuccess, Summary: strings.TrimRight(b.String(), "\n"), Fields: map[string]string{"query": query}}
}

func (h *searchHandlers) forecast(ctx context.Context, ents Entities) Result {
	place := ents.First("location", "place", "city")
	if place == "" {
		place = h.defaultPlace
	}
	text, err := h.weather.Forecast(ctx, place)
	if err != nil {
		logger.Error("weather: %q: %v", place, err)
		return errorRecord(fmt.Sprintf("Désolé, je n'ai pas pu obtenir la météo pour %s.", place), nil)
	}
	return &Record{Status: StatusSuccess, Summary: text, Fields: map[string]string{"location": place}}
}
