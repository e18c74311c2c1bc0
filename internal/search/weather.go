package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Weather answers forecast questions through the search API's answer
// box, the same upstream the engine uses.
type Weather struct {
	engine *SerpEngine
}

func NewWeather(engine *SerpEngine) *Weather {
	return &Weather{engine: engine}
}

// Forecast returns a short French forecast for place.
func (w *Weather) Forecast(ctx context.Context, place string) (string, error) {
	params := url.Values{}
	params.Set("q", "météo "+place)
	params.Set("api_key", w.engine.apiKey)
	params.Set("hl", "fr")
	params.Set("gl", "fr")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.engine.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := w.engine.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather lookup returned %d", resp.StatusCode)
	}

	var payload struct {
		AnswerBox struct {
			Temperature   string `json:"temperature"`
			Unit          string `json:"unit"`
			Weather       string `json:"weather"`
			Precipitation string `json:"precipitation"`
			Wind          string `json:"wind"`
			Location      string `json:"location"`
		} `json:"answer_box"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse weather response: %w", err)
	}
	if payload.Error != "" {
		return "", fmt.Errorf("weather API error: %s", payload.Error)
	}

	box := payload.AnswerBox
	if box.Temperature == "" && box.Weather == "" {
		return "", fmt.Errorf("no forecast found for %q", place)
	}

	loc := box.Location
	if loc == "" {
		loc = place
	}
	unit := "C"
	if strings.HasPrefix(box.Unit, "F") {
		unit = "F"
	}
	text := fmt.Sprintf("À %s, il fait %s°%s", loc, box.Temperature, unit)
	if box.Weather != "" {
		text += ", " + box.Weather
	}
	if box.Wind != "" {
		text += fmt.Sprintf(", vent %s", box.Wind)
	}
	text += "."
	return text, nil
}
