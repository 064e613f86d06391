package sos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"safety-service/internal/db"
	"safety-service/internal/logging"
	"safety-service/internal/models"
	"safety-service/internal/notify"
	"safety-service/internal/realtime"
)

// ErrUserNotFound aborts a trigger when the subject user does not exist.
var ErrUserNotFound = errors.New("user not found")

// Store is the persistence surface the orchestrator depends on.
type Store interface {
	GetUser(ctx context.Context, id int) (models.User, error)
	ListEmergencyContacts(ctx context.Context, userID int) ([]models.EmergencyContact, error)
	ListGuardians(ctx context.Context, userID int) ([]models.Guardian, error)
	LatestLocation(ctx context.Context, userID int) (models.LocationLog, error)
	CreateAlert(ctx context.Context, alert models.Alert) error
}

// Resolver turns coordinates into an address, or nil when it cannot.
type Resolver interface {
	Resolve(ctx context.Context, latitude, longitude float64) *models.ResolvedAddress
}

// Dispatcher fans the emergency message out to recipients.
type Dispatcher interface {
	Fanout(ctx context.Context, msg notify.Message, recipients []models.Recipient) []models.NotificationOutcome
}

// Broadcaster publishes the alert to live observers.
type Broadcaster interface {
	Publish(ctx context.Context, event realtime.AlertEvent)
}

// OpsNotifier sends a notice to the operations channel.
type OpsNotifier interface {
	Notify(ctx context.Context, text string) error
}

// Service coordinates one alert trigger end to end: validate the subject,
// determine location, persist, broadcast, fan out, and assemble the result.
type Service struct {
	store       Store
	resolver    Resolver
	dispatcher  Dispatcher
	broadcaster Broadcaster
	ops         OpsNotifier
	logger      *logging.Logger
}

// New constructs the orchestrator. ops may be nil when no operations channel
// is configured.
func New(store Store, resolver Resolver, dispatcher Dispatcher, broadcaster Broadcaster, ops OpsNotifier, logger *logging.Logger) *Service {
	return &Service{
		store:       store,
		resolver:    resolver,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		ops:         ops,
		logger:      logger,
	}
}

// Trigger handles one emergency report. Only a missing user or a failed
// alert write aborts the operation; geocoding, broadcast, and notification
// failures degrade without failing the trigger.
func (s *Service) Trigger(ctx context.Context, userID int, req models.TriggerRequest) (models.AlertResult, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.logger.Warnf("User not found for SOS: ID %d", userID)
			return models.AlertResult{}, ErrUserNotFound
		}
		return models.AlertResult{}, fmt.Errorf("failed to look up user %d: %w", userID, err)
	}

	latitude, longitude, accuracy := s.determineLocation(ctx, userID, req)

	// Resolve before persisting so the formatted address is stored with the
	// alert. A nil address is a valid degraded state.
	var resolved *models.ResolvedAddress
	if latitude != nil && longitude != nil {
		resolved = s.resolver.Resolve(ctx, *latitude, *longitude)
	}

	alert := models.Alert{
		ID:             uuid.New(),
		UserID:         userID,
		AlertType:      req.AlertType,
		Message:        req.Message,
		Latitude:       latitude,
		Longitude:      longitude,
		Accuracy:       accuracy,
		Status:         models.AlertStatusActive,
		AdditionalInfo: req.AdditionalInfo,
		CreatedAt:      time.Now().UTC(),
	}
	if alert.AlertType == "" {
		alert.AlertType = "emergency"
	}
	if alert.Message == "" {
		alert.Message = "Emergency assistance needed"
	}
	if resolved != nil {
		alert.Address = &resolved.FullAddress
	}

	// The one fatal dependency: an alert that cannot be recorded cannot be
	// trusted to have been triggered.
	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return models.AlertResult{}, fmt.Errorf("failed to persist alert: %w", err)
	}

	// Live observers see the alert before any notification attempt finishes.
	s.broadcast(ctx, user, alert, resolved)

	recipients := s.collectRecipients(ctx, userID)
	msg := notify.Message{
		UserName:  user.Name,
		Body:      alert.Message,
		Latitude:  alert.Latitude,
		Longitude: alert.Longitude,
		Accuracy:  alert.Accuracy,
		Time:      alert.CreatedAt,
	}
	if resolved != nil {
		msg.Address = resolved.FullAddress
	}
	outcomes := s.dispatcher.Fanout(ctx, msg, recipients)

	result := s.assembleResult(alert, outcomes)
	s.logger.Infof("SOS triggered for user %d, notifications sent: %d", userID, result.NotificationsSent)
	return result, nil
}

// determineLocation applies the SOS location rules: a supplied pair is used
// when valid and degrades to "no fix" when not; with no pair supplied, the
// last known location is used if one exists.
func (s *Service) determineLocation(ctx context.Context, userID int, req models.TriggerRequest) (latitude, longitude, accuracy *float64) {
	if req.Latitude != nil && req.Longitude != nil {
		if err := models.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
			// An emergency report is never dropped for a malformed coordinate.
			s.logger.Warnf("Invalid SOS location data for user %d: %v", userID, err)
			return nil, nil, nil
		}
		return req.Latitude, req.Longitude, req.Accuracy
	}

	latest, err := s.store.LatestLocation(ctx, userID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Warnf("Failed to load last known location for user %d: %v", userID, err)
		}
		return nil, nil, nil
	}
	return &latest.Latitude, &latest.Longitude, latest.Accuracy
}

// broadcast publishes the alert event without blocking the trigger on any
// subscriber, and pings the ops channel when one is configured.
func (s *Service) broadcast(ctx context.Context, user models.User, alert models.Alert, resolved *models.ResolvedAddress) {
	address := "Unknown Location"
	if resolved != nil {
		address = resolved.FullAddress
	}
	event := realtime.AlertEvent{
		UserID:    user.ID,
		Name:      user.Name,
		Message:   alert.Message,
		AlertID:   alert.ID,
		Latitude:  alert.Latitude,
		Longitude: alert.Longitude,
		Accuracy:  alert.Accuracy,
		Address:   address,
		Timestamp: alert.CreatedAt,
	}

	// Detached from the request so a client disconnect cannot cancel it.
	bctx := context.WithoutCancel(ctx)
	go s.broadcaster.Publish(bctx, event)

	if s.ops != nil {
		go func() {
			text := fmt.Sprintf("SOS alert for %s: %s (%s)", user.Name, alert.Message, address)
			if err := s.ops.Notify(bctx, text); err != nil {
				s.logger.Errorf("Ops channel notification failed for alert %s: %v", alert.ID, err)
			}
		}()
	}
}

// collectRecipients unions the subject's emergency contacts and guardians.
// A directory read failure degrades that group to empty.
func (s *Service) collectRecipients(ctx context.Context, userID int) []models.Recipient {
	var recipients []models.Recipient

	contacts, err := s.store.ListEmergencyContacts(ctx, userID)
	if err != nil {
		s.logger.Errorf("Failed to load emergency contacts for user %d: %v", userID, err)
	}
	for _, c := range contacts {
		recipients = append(recipients, c)
	}

	guardians, err := s.store.ListGuardians(ctx, userID)
	if err != nil {
		s.logger.Errorf("Failed to load guardians for user %d: %v", userID, err)
	}
	for _, g := range guardians {
		recipients = append(recipients, g)
	}

	return recipients
}

// assembleResult counts recipients reached on at least one channel and
// collects human-readable error strings for every failed attempt.
func (s *Service) assembleResult(alert models.Alert, outcomes []models.NotificationOutcome) models.AlertResult {
	notified := make(map[string]bool)
	var errs []string
	for _, out := range outcomes {
		if out.Succeeded {
			notified[out.Recipient] = true
		} else {
			errs = append(errs, fmt.Sprintf("Failed to notify %s via %s: %s", out.Recipient, out.Channel, out.Error))
		}
	}

	return models.AlertResult{
		AlertID:            alert.ID,
		NotificationsSent:  len(notified),
		LocationShared:     alert.HasLocation(),
		EmergencyServices:  models.EmergencyServices,
		NotificationErrors: errs,
	}
}
