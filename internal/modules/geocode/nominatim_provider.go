package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"tow-trip-planner/internal/apiclient"
	"tow-trip-planner/internal/models"
)

// NominatimProvider talks to an OpenStreetMap Nominatim instance.
type NominatimProvider struct {
	client  *apiclient.Client
	baseURL string
	country string
}

func NewNominatimProvider(client *apiclient.Client, baseURL, country string) *NominatimProvider {
	return &NominatimProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		country: country,
	}
}

func (p *NominatimProvider) Name() string { return "nominatim" }

// nominatimPlace is one search or reverse result. Nominatim encodes the
// coordinates as strings.
type nominatimPlace struct {
	Lat         json.Number `json:"lat"`
	Lon         json.Number `json:"lon"`
	DisplayName string      `json:"display_name"`
	Error       string      `json:"error"`
}

func (np nominatimPlace) toPlace() (models.Place, error) {
	lat, err := strconv.ParseFloat(np.Lat.String(), 64)
	if err != nil {
		return models.Place{}, fmt.Errorf("lat %q: %w", np.Lat, err)
	}
	lon, err := strconv.ParseFloat(np.Lon.String(), 64)
	if err != nil {
		return models.Place{}, fmt.Errorf("lon %q: %w", np.Lon, err)
	}
	return models.Place{
		DisplayName: np.DisplayName,
		Coordinate:  models.Coordinate{Lat: lat, Lon: lon},
	}, nil
}

func (p *NominatimProvider) Search(ctx context.Context, query string, limit int) ([]models.Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	if p.country != "" {
		q.Set("countrycodes", p.country)
	}

	var raw []nominatimPlace
	if err := p.client.GetJSON(ctx, "search", p.baseURL+"/search?"+q.Encode(), &raw); err != nil {
		return nil, err
	}

	places := make([]models.Place, 0, len(raw))
	for _, r := range raw {
		place, err := r.toPlace()
		if err != nil {
			return nil, &models.ProviderError{Provider: p.Name(), Message: "malformed response: " + err.Error()}
		}
		places = append(places, place)
	}
	return places, nil
}

func (p *NominatimProvider) Reverse(ctx context.Context, c models.Coordinate) (models.Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	var raw nominatimPlace
	if err := p.client.GetJSON(ctx, "reverse", p.baseURL+"/reverse?"+q.Encode(), &raw); err != nil {
		return models.Place{}, err
	}
	if raw.Error != "" || raw.DisplayName == "" {
		return models.Place{}, fmt.Errorf("%w: no address at %s", models.ErrGeocodeNotFound, c)
	}

	place, err := raw.toPlace()
	if err != nil {
		// Some instances omit the snapped point; fall back to the query.
		return models.Place{DisplayName: raw.DisplayName, Coordinate: c}, nil
	}
	return place, nil
}
