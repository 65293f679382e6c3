package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender drops outbound mail into a local directory instead of a delivery
// provider: one HTML body plus a JSON envelope per message. Opening the body
// in a browser is how verification links get clicked in development.
type DevSender struct {
	dir string
}

// NewDevSender creates a sender writing to dir, creating it on first send.
func NewDevSender(dir string) EmailSender {
	return &DevSender{dir: dir}
}

// devEnvelope is the delivery metadata written next to the HTML body.
type devEnvelope struct {
	SentAt  time.Time `json:"sentAt"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Tag     string    `json:"tag,omitempty"`
}

// SendEmail writes <timestamp>_<slug>.html and a matching .json envelope.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create output dir: %v", ErrFailedToSendEmail, err)
	}

	now := time.Now()
	base := filepath.Join(d.dir, now.Format("20060102T150405")+"_"+fileSlug(params))

	if err := os.WriteFile(base+".html", []byte(params.BodyHTML), 0o644); err != nil {
		return fmt.Errorf("%w: write body: %v", ErrFailedToSendEmail, err)
	}

	envelope, err := json.MarshalIndent(devEnvelope{
		SentAt:  now,
		To:      params.SendTo,
		Subject: params.Subject,
		Tag:     params.Tag,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal envelope: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(base+".json", envelope, 0o644); err != nil {
		return fmt.Errorf("%w: write envelope: %v", ErrFailedToSendEmail, err)
	}

	return nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9\-_.]+`)

// fileSlug derives a filename component from the tag, falling back to the
// subject.
func fileSlug(params SendEmailParams) string {
	s := params.Tag
	if s == "" {
		s = params.Subject
	}
	s = strings.ToLower(strings.ReplaceAll(s, " ", "-"))
	s = slugStrip.ReplaceAllString(s, "")
	if len(s) > 64 {
		s = s[:64]
	}
	if s == "" {
		return "message"
	}
	return s
}
