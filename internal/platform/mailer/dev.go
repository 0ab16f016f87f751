package mailer

import (
	"fmt"
	"sync"

	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

// DevMailer logs messages instead of delivering them and keeps the last few
// for inspection.
type DevMailer struct {
	mu   sync.Mutex
	sent []SentMessage
}

type SentMessage struct {
	To      string
	Name    string
	Subject string
	Text    string
}

const devMailerKeep = 50

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, _ string) (string, error) {
	logger.Info("[DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
	)
	fmt.Printf("\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"EMAIL (DEV MODE)\n"+
		"To: %s (%s)\n"+
		"Subject: %s\n"+
		"\n%s\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
		toEmail, toName, subject, text)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, SentMessage{To: toEmail, Name: toName, Subject: subject, Text: text})
	if len(d.sent) > devMailerKeep {
		d.sent = d.sent[len(d.sent)-devMailerKeep:]
	}
	return fmt.Sprintf("dev-%d", len(d.sent)), nil
}

// Sent returns a copy of the retained messages, oldest first.
func (d *DevMailer) Sent() []SentMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SentMessage(nil), d.sent...)
}

var _ Service = (*DevMailer)(nil)
