package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert statuses.
const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
)

// EmergencyServices is the fixed directory returned with every trigger response.
var EmergencyServices = map[string]string{
	"ambulance":      "108",
	"police":         "100",
	"fire":           "101",
	"women_helpline": "1091",
}

// Alert represents one persisted emergency event.
type Alert struct {
	ID              uuid.UUID              `json:"id"`
	UserID          int                    `json:"user_id"`
	AlertType       string                 `json:"alert_type"`
	Message         string                 `json:"message"`
	Latitude        *float64               `json:"latitude"`
	Longitude       *float64               `json:"longitude"`
	Accuracy        *float64               `json:"accuracy"`
	Address         *string                `json:"address,omitempty"`
	Status          string                 `json:"status"`
	AdditionalInfo  map[string]interface{} `json:"additional_info,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	ResolvedAt      *time.Time             `json:"resolved_at,omitempty"`
	ResolutionNotes *string                `json:"resolution_notes,omitempty"`
}

// HasLocation reports whether the alert carries a coordinate pair.
func (a Alert) HasLocation() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// TriggerRequest is the caller-supplied payload of a trigger operation.
// Every field is optional.
type TriggerRequest struct {
	AlertType      string                 `json:"alert_type"`
	Message        string                 `json:"message"`
	Latitude       *float64               `json:"latitude"`
	Longitude      *float64               `json:"longitude"`
	Accuracy       *float64               `json:"accuracy"`
	AdditionalInfo map[string]interface{} `json:"additional_info"`
}

// AlertResult is the structured outcome of a trigger operation.
type AlertResult struct {
	AlertID            uuid.UUID         `json:"alert_id"`
	NotificationsSent  int               `json:"notifications_sent"`
	LocationShared     bool              `json:"location_shared"`
	EmergencyServices  map[string]string `json:"emergency_services"`
	NotificationErrors []string          `json:"notification_errors,omitempty"`
}

// Channel identifies a notification transport.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// NotificationOutcome records one (recipient, channel) attempt.
type NotificationOutcome struct {
	Recipient string  `json:"recipient"`
	Kind      string  `json:"kind"`
	Channel   Channel `json:"channel"`
	Succeeded bool    `json:"succeeded"`
	Error     string  `json:"error,omitempty"`
}
