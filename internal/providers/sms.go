package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender sends messages through the Twilio REST API.
type SMSSender struct {
	client *twilio.RestClient
	from   string
}

// NewSMSSender builds a Twilio-backed sender. The per-request timeout bounds
// each send so a slow provider cannot stall the fan-out.
func NewSMSSender(accountSID, authToken, fromNumber string, timeout time.Duration) *SMSSender {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	client.SetTimeout(timeout)
	return &SMSSender{client: client, from: fromNumber}
}

// Send delivers one SMS to toNumber.
func (s *SMSSender) Send(toNumber, body string) error {
	if !strings.HasPrefix(toNumber, "+") {
		return fmt.Errorf("invalid phone number: %s", toNumber)
	}

	params := &twilioApi.CreateMessageParams{
		To:   &toNumber,
		From: &s.from,
		Body: &body,
	}

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", toNumber, err)
	}
	return nil
}
