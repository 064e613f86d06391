package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"safety-service/internal/config"
	"safety-service/internal/logging"
	"safety-service/internal/models"
)

// Provider accuracy tiers.
const (
	AccuracyHigh    = "HIGH"
	AccuracyMedium  = "MEDIUM"
	AccuracyUnknown = "UNKNOWN"
)

const defaultGoogleURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Resolver turns coordinates into a structured address. It tries the Google
// geocoder when an API key is configured and falls back to Nominatim.
type Resolver struct {
	apiKey       string
	googleURL    string
	nominatimURL string
	client       *http.Client
	logger       *logging.Logger
}

// NewResolver constructs a Resolver from the geocoding configuration.
func NewResolver(cfg config.Config, logger *logging.Logger) *Resolver {
	timeout := cfg.Geocoding.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		apiKey:       cfg.Geocoding.GoogleAPIKey,
		googleURL:    defaultGoogleURL,
		nominatimURL: cfg.Geocoding.NominatimURL,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Resolve returns the address for a coordinate pair, or nil when every
// provider failed or returned nothing. A nil result is a valid degraded
// state for the caller, not an error.
func (r *Resolver) Resolve(ctx context.Context, latitude, longitude float64) *models.ResolvedAddress {
	if r.apiKey != "" {
		addr, err := r.resolveGoogle(ctx, latitude, longitude)
		if err != nil {
			r.logger.Warnf("Google geocoding failed: %v", err)
		} else if addr != nil {
			return addr
		}
	}

	addr, err := r.resolveNominatim(ctx, latitude, longitude)
	if err != nil {
		r.logger.Warnf("Nominatim geocoding failed: %v", err)
		return nil
	}
	return addr
}

func (r *Resolver) resolveGoogle(ctx context.Context, latitude, longitude float64) (*models.ResolvedAddress, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", latitude, longitude))
	params.Set("key", r.apiKey)
	params.Set("result_type", "street_address|premise|subpremise")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.googleURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode API returned status %d", resp.StatusCode)
	}

	var out struct {
		Results []struct {
			FormattedAddress  string          `json:"formatted_address"`
			AddressComponents json.RawMessage `json:"address_components"`
			PlaceID           string          `json:"place_id"`
			Geometry          struct {
				LocationType string `json:"location_type"`
			} `json:"geometry"`
		} `json:"results"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, nil
	}

	result := out.Results[0]
	accuracy := AccuracyMedium
	if result.Geometry.LocationType == "ROOFTOP" {
		accuracy = AccuracyHigh
	}
	return &models.ResolvedAddress{
		FullAddress: result.FormattedAddress,
		Components:  result.AddressComponents,
		PlaceID:     result.PlaceID,
		Accuracy:    accuracy,
	}, nil
}

func (r *Resolver) resolveNominatim(ctx context.Context, latitude, longitude float64) (*models.ResolvedAddress, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", fmt.Sprintf("%f", latitude))
	params.Set("lon", fmt.Sprintf("%f", longitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.nominatimURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "safety-service")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode API returned status %d", resp.StatusCode)
	}

	var out struct {
		DisplayName string          `json:"display_name"`
		PlaceID     json.Number     `json:"place_id"`
		Address     json.RawMessage `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	if out.DisplayName == "" {
		return nil, nil
	}

	// Nominatim does not expose precision metadata.
	return &models.ResolvedAddress{
		FullAddress: out.DisplayName,
		Components:  out.Address,
		PlaceID:     out.PlaceID.String(),
		Accuracy:    AccuracyMedium,
	}, nil
}
