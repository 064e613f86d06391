package sos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safety-service/internal/db"
	"safety-service/internal/logging"
	"safety-service/internal/models"
	"safety-service/internal/notify"
	"safety-service/internal/realtime"
)

func f64(v float64) *float64 { return &v }

type fakeStore struct {
	mu        sync.Mutex
	users     map[int]models.User
	contacts  map[int][]models.EmergencyContact
	guardians map[int][]models.Guardian
	latest    map[int]models.LocationLog
	created   []models.Alert
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[int]models.User),
		contacts:  make(map[int][]models.EmergencyContact),
		guardians: make(map[int][]models.Guardian),
		latest:    make(map[int]models.LocationLog),
	}
}

func (f *fakeStore) GetUser(_ context.Context, id int) (models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return models.User{}, db.ErrNotFound
}

func (f *fakeStore) ListEmergencyContacts(_ context.Context, userID int) ([]models.EmergencyContact, error) {
	return f.contacts[userID], nil
}

func (f *fakeStore) ListGuardians(_ context.Context, userID int) ([]models.Guardian, error) {
	return f.guardians[userID], nil
}

func (f *fakeStore) LatestLocation(_ context.Context, userID int) (models.LocationLog, error) {
	if loc, ok := f.latest[userID]; ok {
		return loc, nil
	}
	return models.LocationLog{}, db.ErrNotFound
}

func (f *fakeStore) CreateAlert(_ context.Context, alert models.Alert) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	f.created = append(f.created, alert)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) hasAlert(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.created {
		if a.ID.String() == id {
			return true
		}
	}
	return false
}

type fakeResolver struct {
	addr  *models.ResolvedAddress
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, _, _ float64) *models.ResolvedAddress {
	f.calls++
	return f.addr
}

// fakeDispatcher succeeds on every available channel unless outcomes is set.
type fakeDispatcher struct {
	outcomes []models.NotificationOutcome
	gotMsg   notify.Message
	gotRcps  []models.Recipient
	onFanout func()
	called   bool
}

func (f *fakeDispatcher) Fanout(_ context.Context, msg notify.Message, recipients []models.Recipient) []models.NotificationOutcome {
	f.called = true
	f.gotMsg = msg
	f.gotRcps = recipients
	if f.onFanout != nil {
		f.onFanout()
	}
	if f.outcomes != nil {
		return f.outcomes
	}
	var out []models.NotificationOutcome
	for _, r := range recipients {
		if r.RecipientPhone() != "" {
			out = append(out, models.NotificationOutcome{Recipient: r.RecipientName(), Channel: models.ChannelSMS, Succeeded: true})
		}
		if r.RecipientEmail() != "" {
			out = append(out, models.NotificationOutcome{Recipient: r.RecipientName(), Channel: models.ChannelEmail, Succeeded: true})
		}
	}
	return out
}

type fakeBroadcaster struct {
	events chan realtime.AlertEvent
}

func (f *fakeBroadcaster) Publish(_ context.Context, event realtime.AlertEvent) {
	f.events <- event
}

type fixture struct {
	store       *fakeStore
	resolver    *fakeResolver
	dispatcher  *fakeDispatcher
	broadcaster *fakeBroadcaster
	svc         *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, err := logging.New(t.TempDir(), "debug")
	require.NoError(t, err)

	f := &fixture{
		store:       newFakeStore(),
		resolver:    &fakeResolver{},
		dispatcher:  &fakeDispatcher{},
		broadcaster: &fakeBroadcaster{events: make(chan realtime.AlertEvent, 2)},
	}
	f.svc = New(f.store, f.resolver, f.dispatcher, f.broadcaster, nil, logger)
	return f
}

func (f *fixture) waitEvent(t *testing.T) realtime.AlertEvent {
	t.Helper()
	select {
	case ev := <-f.broadcaster.events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no broadcast event received")
		return realtime.AlertEvent{}
	}
}

func TestTriggerUserNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Trigger(context.Background(), 99, models.TriggerRequest{})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, f.dispatcher.called)
}

func TestTriggerPersistenceFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.store.users[1] = models.User{ID: 1, Name: "Asha"}
	f.store.createErr = errors.New("connection lost")

	_, err := f.svc.Trigger(context.Background(), 1, models.TriggerRequest{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.False(t, f.dispatcher.called)
	assert.Empty(t, f.broadcaster.events)
}

func TestTriggerNoCoordinatesNoHistory(t *testing.T) {
	f := newFixture(t)
	f.store.users[1] = models.User{ID: 1, Name: "Asha"}

	result, err := f.svc.Trigger(context.Background(), 1, models.TriggerRequest{})
	require.NoError(t, err)

	assert.False(t, result.LocationShared)
	require.Len(t, f.store.created, 1)
	alert := f.store.created[0]
	assert.Nil(t, alert.Latitude)
	assert.Nil(t, alert.Longitude)
	assert.Equal(t, "emergency", alert.AlertType)
	assert.Equal(t, "Emergency assistance needed", alert.Message)
	assert.Equal(t, models.AlertStatusActive, alert.Status)
	assert.Zero(t, f.resolver.calls)

	ev := f.waitEvent(t)
	assert.Equal(t, "Unknown Location", ev.Address)
}

func TestTriggerFallsBackToLastKnownLocation(t *testing.T) {
	f := newFixture(t)
	f.store.users[1] = models.User{ID: 1, Name: "Asha"}
	f.store.latest[1] = models.LocationLog{UserID: 1, Latitude: 12.9, Longitude: 77.6, Accuracy: f64(12)}

	result, err := f.svc.Trigger(context.Background(), 1, models.TriggerRequest{})
	require.NoError(t, err)

	assert.True(t, result.LocationShared)
	require.Len(t, f.store.created, 1)
	alert := f.store.created[0]
	require.NotNil(t, alert.Latitude)
	assert.Equal(t, 12.9, *alert.Latitude)
	assert.Equal(t, 77.6, *alert.Longitude)
	assert.Equal(t, 1, f.resolver.calls)
}

func TestTriggerInvalidCoordinatesDegradeToNoFix(t *testing.T) {
	for _, pair := range []struct{ lat, lon float64 }{{95, 77.6}, {0, 0}, {12.9, 181}} {
		f := newFixture(t)
		f.store.users[1] = models.User{ID: 1, Name: "Asha"}

		result, err := f.svc.Trigger(context.Background(), 1, models.TriggerRequest{
			Latitude:  f64(pair.lat),
			Longitude: f64(pair.lon),
		})
		require.NoError(t, err, "emergency must not be dropped for coordinates %v", pair)
		assert.False(t, result.LocationShared)
		require.Len(t, f.store.created, 1)
		assert.Nil(t, f.store.created[0].Latitude)
	}
}

func TestTriggerPersistsBeforeDispatchAndBroadcast(t *testing.T) {
	f := newFixture(t)
	f.store.users[1] = models.User{ID: 1, Name: "Asha"}
	f.store.contacts[1] = []models.EmergencyContact{{Name: "Contact", Phone: "+911111111111"}}

	var persistedAtFanout bool
	f.dispatcher.onFanout = func() {
		f.store.mu.Lock()
		persistedAtFanout = len(f.store.created) == 1
		f.store.mu.Unlock()
	}

	result, err := f.svc.Trigger(context.Background(), 1, models.TriggerRequest{})
	require.NoError(t, err)
	assert.True(t, persistedAtFanout, "alert row must exist before the dispatcher begins")

	ev := f.waitEvent(t)
	assert.Equal(t, result.AlertID, ev.AlertID)
	assert.True(t, f.store.hasAlert(ev.AlertID.String()), "alert row must exist before the broadcast")
}

func TestTriggerEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.store.users[42] = models.User{ID: 42, Name: "Asha"}
	f.store.contacts[42] = []models.EmergencyContact{{Name: "Contact", Phone: "+911111111111"}}
	f.store.guardians[42] = []models.Guardian{{Name: "Guardian", Email: "guardian@example.com"}}
	f.resolver.addr = &models.ResolvedAddress{FullAddress: "1 Example Street", Accuracy: "HIGH"}

	result, err := f.svc.Trigger(context.Background(), 42, models.TriggerRequest{
		Latitude:  f64(12.9),
		Longitude: f64(77.6),
		Accuracy:  f64(8),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.NotificationsSent)
	assert.True(t, result.LocationShared)
	assert.Empty(t, result.NotificationErrors)
	assert.Equal(t, models.EmergencyServices, result.EmergencyServices)

	// Fan-out saw the union of contacts and guardians with the resolved address.
	require.Len(t, f.dispatcher.gotRcps, 2)
	assert.Equal(t, "1 Example Street", f.dispatcher.gotMsg.Address)

	// The stored alert carries the formatted address.
	require.Len(t, f.store.created, 1)
	require.NotNil(t, f.store.created[0].Address)
	assert.Equal(t, "1 Example Street", *f.store.created[0].Address)

	ev := f.waitEvent(t)
	assert.Equal(t, 42, ev.UserID)
	assert.Equal(t, "Asha", ev.Name)
	assert.Equal(t, "1 Example Street", ev.Address)
}

func TestTriggerPartialFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.store.users[1] = models.User{ID: 1, Name: "Asha"}
	f.store.contacts[1] = []models.EmergencyContact{
		{Name: "Reached", Phone: "+911111111111"},
		{Name: "Unreached", Phone: "+912222222222"},
	}
	f.dispatcher.outcomes = []models.NotificationOutcome{
		{Recipient: "Reached", Channel: models.ChannelSMS, Succeeded: true},
		{Recipient: "Unreached", Channel: models.ChannelSMS, Succeeded: false, Error: "provider outage"},
	}

	result, err := f.svc.Trigger(context.Background(), 1, models.TriggerRequest{})
	require.NoError(t, err, "partial notification failure never fails the trigger")

	assert.Equal(t, 1, result.NotificationsSent)
	require.Len(t, result.NotificationErrors, 1)
	assert.Equal(t, "Failed to notify Unreached via sms: provider outage", result.NotificationErrors[0])
}

func TestTriggerCountsRecipientOnceAcrossChannels(t *testing.T) {
	f := newFixture(t)
	f.store.users[1] = models.User{ID: 1, Name: "Asha"}
	f.store.contacts[1] = []models.EmergencyContact{{Name: "Both", Phone: "+911111111111", Email: "both@example.com"}}

	result, err := f.svc.Trigger(context.Background(), 1, models.TriggerRequest{})
	require.NoError(t, err)
	// Two successful channels, one recipient.
	assert.Equal(t, 1, result.NotificationsSent)
}

func TestTriggerIsNotIdempotent(t *testing.T) {
	f := newFixture(t)
	f.store.users[1] = models.User{ID: 1, Name: "Asha"}

	first, err := f.svc.Trigger(context.Background(), 1, models.TriggerRequest{})
	require.NoError(t, err)
	second, err := f.svc.Trigger(context.Background(), 1, models.TriggerRequest{})
	require.NoError(t, err)

	assert.NotEqual(t, first.AlertID, second.AlertID)
	assert.Len(t, f.store.created, 2)
}
