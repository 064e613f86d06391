package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"safety-service/internal/geocode"
	"safety-service/internal/providers"
)

// Message is the single emergency message rendered for every channel.
type Message struct {
	UserName  string
	Body      string
	Latitude  *float64
	Longitude *float64
	Accuracy  *float64
	Address   string
	Time      time.Time
}

// HasLocation reports whether the message carries a coordinate pair.
func (m Message) HasLocation() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// MapsLink returns a Google Maps search link for the location, or "".
func (m Message) MapsLink() string {
	if !m.HasLocation() {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", *m.Latitude, *m.Longitude)
}

// DirectionsLink returns a Google Maps directions link for the location, or "".
func (m Message) DirectionsLink() string {
	if !m.HasLocation() {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%f,%f", *m.Latitude, *m.Longitude)
}

// Subject is the email subject line.
func (m Message) Subject() string {
	return fmt.Sprintf("🚨 EMERGENCY ALERT - %s", m.UserName)
}

// SMSText renders the SMS body, identical to the plain-text core of the email.
func (m Message) SMSText() string {
	text := fmt.Sprintf("EMERGENCY: %s needs help! %s", m.UserName, m.Body)
	if link := m.MapsLink(); link != "" {
		text += "\nLocation: " + link
	}
	return text
}

// EmailText renders the plain-text email body.
func (m Message) EmailText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "EMERGENCY ALERT: %s\n", m.UserName)
	fmt.Fprintf(&b, "Time: %s\n", m.Time.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Message: %s\n", m.Body)
	if m.HasLocation() {
		b.WriteString("Location:\n")
		fmt.Fprintf(&b, "Latitude: %f\n", *m.Latitude)
		fmt.Fprintf(&b, "Longitude: %f\n", *m.Longitude)
		if m.Address != "" {
			fmt.Fprintf(&b, "Address: %s\n", m.Address)
		}
		if m.Accuracy != nil {
			fmt.Fprintf(&b, "Accuracy: %s\n", geocode.DescribeAccuracy(m.Accuracy))
		}
		fmt.Fprintf(&b, "%s\n", m.MapsLink())
	}
	return b.String()
}

// EmailHTML renders the HTML email body with the emergency-numbers block.
func (m Message) EmailHTML() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><style>
body { font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; }
.alert-box { background: #ffe6e6; border: 2px solid #ff4444; padding: 15px; border-radius: 8px; }
.map-link { display: inline-block; background: #007bff; color: white; padding: 10px; text-decoration: none; border-radius: 5px; margin: 10px; }
.emergency-info { background: #e9ecef; padding: 15px; border-radius: 8px; margin: 15px 0; }
</style></head><body><div class="alert-box">`)
	fmt.Fprintf(&b, "<h2>🚨 EMERGENCY ALERT: %s</h2>", m.UserName)
	fmt.Fprintf(&b, "<p><strong>Time:</strong> %s</p>", m.Time.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "<p><strong>Message:</strong> %s</p>", m.Body)
	if m.HasLocation() {
		b.WriteString("<h3>Location</h3>")
		fmt.Fprintf(&b, "<p>Latitude: %f</p>", *m.Latitude)
		fmt.Fprintf(&b, "<p>Longitude: %f</p>", *m.Longitude)
		if m.Address != "" {
			fmt.Fprintf(&b, "<p>Address: %s</p>", m.Address)
		}
		if m.Accuracy != nil {
			fmt.Fprintf(&b, "<p>Accuracy: %s</p>", geocode.DescribeAccuracy(m.Accuracy))
		}
		b.WriteString(`<div style="text-align: center;">`)
		fmt.Fprintf(&b, `<a href="%s" class="map-link">View on Google Maps</a>`, m.MapsLink())
		fmt.Fprintf(&b, `<a href="%s" class="map-link">Get Directions</a>`, m.DirectionsLink())
		b.WriteString("</div>")
	}
	b.WriteString(`</div><div class="emergency-info"><h3>🆘 WHAT TO DO:</h3><ol>`)
	fmt.Fprintf(&b, "<li>Call %s immediately</li>", m.UserName)
	b.WriteString(`<li>If no response, contact emergency services:<ul>
<li>Ambulance: 108</li><li>Police: 100</li><li>Fire: 101</li><li>Women Helpline: 1091</li>
</ul></li><li>Use location links to reach them</li></ol></div></body></html>`)
	return b.String()
}

const staticMapURL = "https://maps.googleapis.com/maps/api/staticmap"

// fetchStaticMap renders a map image of the emergency location for the email
// attachment. Returns nil when no key is configured or the image cannot be
// fetched; the email is sent without it.
func fetchStaticMap(ctx context.Context, client *http.Client, apiKey string, m Message) *providers.Attachment {
	if apiKey == "" || !m.HasLocation() {
		return nil
	}

	zoom := 16
	if m.Accuracy != nil && *m.Accuracy <= 50 {
		zoom = 18
	}
	params := url.Values{}
	params.Set("center", fmt.Sprintf("%f,%f", *m.Latitude, *m.Longitude))
	params.Set("zoom", fmt.Sprintf("%d", zoom))
	params.Set("size", "600x400")
	params.Set("markers", fmt.Sprintf("color:red|%f,%f", *m.Latitude, *m.Longitude))
	params.Set("key", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, staticMapURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil
	}

	name := fmt.Sprintf("emergency_location_%s_%s.png",
		strings.ReplaceAll(m.UserName, " ", "_"), m.Time.UTC().Format("20060102_150405"))
	return &providers.Attachment{
		Filename:    name,
		ContentType: "image/png",
		Data:        data,
	}
}
