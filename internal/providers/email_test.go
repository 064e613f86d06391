package providers

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMessage(t *testing.T, msg []byte) (textproto.MIMEHeader, *multipart.Reader) {
	t.Helper()
	reader := textproto.NewReader(bufio.NewReader(bytes.NewReader(msg)))
	header, err := reader.ReadMIMEHeader()
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(mediaType, "multipart/"))
	return header, multipart.NewReader(reader.R, params["boundary"])
}

func TestBuildMessageAlternativeParts(t *testing.T) {
	msg, err := buildMessage("from@example.com", "to@example.com", "Subject line", "plain body", "<p>html body</p>", nil)
	require.NoError(t, err)

	header, mr := parseMessage(t, msg)
	assert.Equal(t, "to@example.com", header.Get("To"))
	assert.Equal(t, "Subject line", header.Get("Subject"))
	assert.Contains(t, header.Get("Content-Type"), "multipart/alternative")

	text, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, text.Header.Get("Content-Type"), "text/plain")
	body, _ := io.ReadAll(text)
	assert.Equal(t, "plain body", string(body))

	html, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, html.Header.Get("Content-Type"), "text/html")
	body, _ = io.ReadAll(html)
	assert.Equal(t, "<p>html body</p>", string(body))
}

func TestBuildMessageWithAttachment(t *testing.T) {
	data := bytes.Repeat([]byte{0x89, 0x50, 0x4e, 0x47}, 64)
	att := &Attachment{Filename: "map.png", ContentType: "image/png", Data: data}

	msg, err := buildMessage("from@example.com", "to@example.com", "Subject", "text", "<p>html</p>", att)
	require.NoError(t, err)

	header, mr := parseMessage(t, msg)
	assert.Contains(t, header.Get("Content-Type"), "multipart/mixed")

	// First part: the alternative body.
	alt, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, alt.Header.Get("Content-Type"), "multipart/alternative")

	// Second part: the attachment, base64 encoded.
	part, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "image/png", part.Header.Get("Content-Type"))
	assert.Contains(t, part.Header.Get("Content-Disposition"), `filename="map.png"`)
	assert.Equal(t, "base64", part.Header.Get("Content-Transfer-Encoding"))

	encoded, err := io.ReadAll(part)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestSendRejectsInvalidAddresses(t *testing.T) {
	e := NewEmailSender("smtp.example.com", 587, "user@example.com", "secret")
	err := e.Send("not-an-address", "s", "t", "h", nil)
	assert.ErrorContains(t, err, "invalid email address")
}

func TestSMSSenderRejectsNonE164Number(t *testing.T) {
	s := NewSMSSender("AC123", "token", "+10000000000", 0)
	err := s.Send("12345", "body")
	assert.ErrorContains(t, err, "invalid phone number")
}
