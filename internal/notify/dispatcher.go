package notify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"safety-service/internal/logging"
	"safety-service/internal/models"
	"safety-service/internal/providers"
)

// SMSSender delivers one SMS.
type SMSSender interface {
	Send(toNumber, body string) error
}

// EmailSender delivers one email.
type EmailSender interface {
	Send(to, subject, textBody, htmlBody string, attachment *providers.Attachment) error
}

// Dispatcher fans one emergency message out to a set of recipients, trying
// SMS and email independently per recipient. A nil sender means the channel
// is disabled.
type Dispatcher struct {
	sms     SMSSender
	email   EmailSender
	logger  *logging.Logger
	timeout time.Duration
	mapsKey string
	client  *http.Client
}

func NewDispatcher(sms SMSSender, email EmailSender, mapsKey string, timeout time.Duration, logger *logging.Logger) *Dispatcher {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sms:     sms,
		email:   email,
		logger:  logger,
		timeout: timeout,
		mapsKey: mapsKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fanout attempts every available channel for every recipient. Failures are
// converted into outcomes, never propagated; one recipient's provider outage
// must not stop notification of the rest. Outcomes are returned in recipient
// submission order, SMS before email per recipient.
func (d *Dispatcher) Fanout(ctx context.Context, msg Message, recipients []models.Recipient) []models.NotificationOutcome {
	// Render the map attachment once; every email shares it.
	var attachment *providers.Attachment
	if d.email != nil && msg.HasLocation() {
		attachment = fetchStaticMap(ctx, d.client, d.mapsKey, msg)
	}

	slots := make([][]models.NotificationOutcome, len(recipients))
	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, rcp models.Recipient) {
			defer wg.Done()
			slots[i] = d.notifyOne(rcp, msg, attachment)
		}(i, recipient)
	}
	wg.Wait()

	var outcomes []models.NotificationOutcome
	for _, slot := range slots {
		outcomes = append(outcomes, slot...)
	}
	return outcomes
}

// notifyOne runs every available channel for a single recipient. A failure
// on one channel never suppresses the other.
func (d *Dispatcher) notifyOne(rcp models.Recipient, msg Message, attachment *providers.Attachment) []models.NotificationOutcome {
	var outcomes []models.NotificationOutcome

	if phone := rcp.RecipientPhone(); phone != "" && d.sms != nil {
		err := d.attempt(func() error {
			return d.sms.Send(phone, msg.SMSText())
		})
		outcomes = append(outcomes, d.outcome(rcp, models.ChannelSMS, err))
	}

	if email := rcp.RecipientEmail(); email != "" && d.email != nil {
		err := d.attempt(func() error {
			return d.email.Send(email, msg.Subject(), msg.EmailText(), msg.EmailHTML(), attachment)
		})
		outcomes = append(outcomes, d.outcome(rcp, models.ChannelEmail, err))
	}

	return outcomes
}

// attempt bounds one channel attempt. On timeout the send is abandoned but
// allowed to complete in the background rather than aborted mid-delivery.
func (d *Dispatcher) attempt(fn func() error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("transport panic: %v", r)
			}
		}()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(d.timeout):
		return fmt.Errorf("timed out after %s", d.timeout)
	}
}

func (d *Dispatcher) outcome(rcp models.Recipient, channel models.Channel, err error) models.NotificationOutcome {
	out := models.NotificationOutcome{
		Recipient: rcp.RecipientName(),
		Kind:      rcp.RecipientKind(),
		Channel:   channel,
		Succeeded: err == nil,
	}
	if err != nil {
		out.Error = err.Error()
		d.logger.Errorf("Notification error for %s via %s: %v", rcp.RecipientName(), channel, err)
	} else {
		d.logger.Infof("Notified %s via %s", rcp.RecipientName(), channel)
	}
	return out
}
