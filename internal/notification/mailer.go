// Package notification renders order emails and delivers them over SMTP.
package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"storefront-order-service/internal/config"
	"storefront-order-service/internal/model"

	"github.com/wneessen/go-mail"
)

type Attachment struct {
	Path string
	Name string
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Confirmation is a rendered order confirmation ready to be delivered.
type Confirmation struct {
	User        *model.User
	Order       *model.Order
	HTML        string
	InvoicePath string
}

type Mailer struct {
	sender     Sender
	adminEmail string
}

func NewMailer(sender Sender, adminEmail string) *Mailer {
	return &Mailer{
		sender:     sender,
		adminEmail: adminEmail,
	}
}

// Render builds the customer-facing confirmation body.
func (m *Mailer) Render(user *model.User, order *model.Order) (string, error) {
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, confirmationView{
		Greeting:    greeting(user, order),
		Order:       order,
		AddressLine: addressLine(order.Address),
	})
	if err != nil {
		return "", fmt.Errorf("render confirmation: %w", err)
	}
	return buf.String(), nil
}

// Send mails the confirmation to the customer and a copy to the admin
// mailbox. Both deliveries are attempted; their errors are joined.
func (m *Mailer) Send(ctx context.Context, c *Confirmation) error {
	if c.User == nil || c.User.Email == "" {
		return errors.New("user has no email address")
	}

	var attachments []Attachment
	if c.InvoicePath != "" {
		attachments = append(attachments, Attachment{
			Path: c.InvoicePath,
			Name: filepath.Base(c.InvoicePath),
		})
	}

	userSubject, adminSubject := "Order Confirmation", "New Order from "+c.User.Email
	if c.Order.PaymentMethod == model.PaymentMethodPayPal {
		userSubject, adminSubject = "PayPal Order Confirmed", "New PayPal Order from "+c.User.Email
	}

	var errs []error
	if err := m.sender.Send(ctx, &Message{
		To:          c.User.Email,
		Subject:     userSubject,
		HTML:        c.HTML,
		Attachments: attachments,
	}); err != nil {
		errs = append(errs, fmt.Errorf("send customer email: %w", err))
	}

	if m.adminEmail != "" {
		var buf bytes.Buffer
		err := adminTmpl.Execute(&buf, adminView{
			User:         c.User,
			Order:        c.Order,
			Confirmation: template.HTML(c.HTML), // rendered by confirmationTmpl
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("render admin email: %w", err))
		} else if err := m.sender.Send(ctx, &Message{
			To:          m.adminEmail,
			Subject:     adminSubject,
			HTML:        buf.String(),
			Attachments: attachments,
		}); err != nil {
			errs = append(errs, fmt.Errorf("send admin email: %w", err))
		}
	}

	return errors.Join(errs...)
}

type smtpSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(cfg config.SMTP) (Sender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Email),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &smtpSender{
		client: client,
		from:   cfg.Email,
	}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	for _, a := range msg.Attachments {
		m.AttachFile(a.Path, mail.WithFileName(a.Name))
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
