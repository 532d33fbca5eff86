// Package notify sends participant emails for booking events.  Delivery
// is best effort: the consumer logs failures and the booking that caused
// the event is never affected.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"text/template"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/iliyamo/atelier-booking/internal/config"
	"github.com/iliyamo/atelier-booking/internal/queue"
)

// Sender is the part of *mail.Client the Mailer uses.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer turns booking events into emails.
type Mailer struct {
	client   Sender
	from     string
	fromName string
}

// NewMailer builds an SMTP client from cfg.  It returns nil, nil when no
// SMTP host is configured so callers can skip email entirely.
func NewMailer(cfg config.MailConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	c, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return NewMailerWithSender(c, cfg.From, cfg.FromName), nil
}

// NewMailerWithSender wires a Mailer around an existing sender.
func NewMailerWithSender(s Sender, from, fromName string) *Mailer {
	return &Mailer{client: s, from: from, fromName: fromName}
}

// HandleBookingEvent emails the participant.  Events without an email
// address are skipped.
func (m *Mailer) HandleBookingEvent(ctx context.Context, ev queue.BookingEvent) error {
	if ev.Email == "" {
		return nil
	}
	subject, body, err := Render(ev)
	if err != nil {
		return err
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(ev.Email); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return m.client.DialAndSendWithContext(ctx, msg)
}

var bodyTmpl = template.Must(template.New("booking").Parse(`Hello {{.Name}},

{{.Intro}}

  {{.Title}}
  {{.When}}
  Price: {{.Price}} DH
  Reference: {{.BookingID}}

{{.Outro}}
`))

// Render produces the subject and plain-text body for an event.
func Render(ev queue.BookingEvent) (subject, body string, err error) {
	data := struct {
		Name, Intro, Title, When, Price, BookingID, Outro string
	}{
		Name:      ev.Name,
		Title:     ev.Title,
		When:      FormatWhen(ev.Date, ev.StartTime),
		Price:     strconv.FormatFloat(ev.Price, 'f', -1, 64),
		BookingID: ev.BookingID,
	}
	switch ev.Type {
	case queue.BookingConfirmed:
		subject = "Your booking is confirmed: " + ev.Title
		data.Intro = "Your payment has been verified and your seat is confirmed."
		data.Outro = "We look forward to seeing you."
	default:
		subject = "We received your booking: " + ev.Title
		data.Intro = "Thank you for your booking. We will review your payment proof shortly."
		data.Outro = "You will receive another email once it is confirmed."
	}
	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}

// FormatWhen renders "2025-03-14" and "14:30" as
// "Friday, March 14, 2025 at 2:30 PM".  Unparseable parts are passed
// through as they are.
func FormatWhen(date, start string) string {
	d := date
	if t, err := time.Parse("2006-01-02", date); err == nil {
		d = t.Format("Monday, January 2, 2006")
	}
	if start == "" {
		return d
	}
	s := start
	if t, err := time.Parse("15:04", start); err == nil {
		s = t.Format("3:04 PM")
	}
	return d + " at " + s
}
