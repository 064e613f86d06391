package models

import (
	"encoding/json"
	"errors"
	"time"
)

// Coordinate validation errors.
var (
	ErrCoordinateRange = errors.New("invalid coordinate range")
	ErrCoordinateNoFix = errors.New("invalid coordinates: 0,0")
)

// ValidateCoordinates checks that a latitude/longitude pair is a usable fix.
// The exact pair (0,0) is treated as "no fix" rather than a real coordinate.
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return ErrCoordinateRange
	}
	if latitude == 0 && longitude == 0 {
		return ErrCoordinateNoFix
	}
	return nil
}

// LocationUpdate is the payload of a live location report.
type LocationUpdate struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
	Altitude  *float64 `json:"altitude"`
	Heading   *float64 `json:"heading"`
	Speed     *float64 `json:"speed"`
	Source    string   `json:"location_source"`
}

// Validate enforces the strict rules of the location-update path: both
// coordinates required and in range. The SOS path deliberately does not
// reuse this as a hard failure.
func (u LocationUpdate) Validate() error {
	if u.Latitude == nil || u.Longitude == nil {
		return errors.New("missing required fields: latitude, longitude")
	}
	return ValidateCoordinates(*u.Latitude, *u.Longitude)
}

// IsHighAccuracy reports whether the fix is within the 50m band.
func (u LocationUpdate) IsHighAccuracy() bool {
	return u.Accuracy != nil && *u.Accuracy <= 50
}

// LocationLog is one stored location record for a user.
type LocationLog struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Accuracy       *float64  `json:"accuracy"`
	Altitude       *float64  `json:"altitude"`
	Heading        *float64  `json:"heading"`
	Speed          *float64  `json:"speed"`
	Address        *string   `json:"address"`
	Source         string    `json:"location_source"`
	IsHighAccuracy bool      `json:"is_high_accuracy"`
	Timestamp      time.Time `json:"timestamp"`
}

// ResolvedAddress is the ephemeral result of reverse geocoding. Components
// are kept verbatim as the provider returned them.
type ResolvedAddress struct {
	FullAddress string          `json:"full_address"`
	Components  json.RawMessage `json:"components,omitempty"`
	PlaceID     string          `json:"place_id,omitempty"`
	Accuracy    string          `json:"accuracy"` // HIGH, MEDIUM or UNKNOWN
}
