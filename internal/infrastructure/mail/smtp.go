package mail

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/config"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
)

// SMTPMailer delivers email over SMTP
type SMTPMailer struct {
	from   string
	name   string
	send   func(m *gomail.Message) error
	logger *zap.Logger
}

// NewMailer returns an SMTP mailer, or a logging mailer when SMTP is not configured.
func NewMailer(cfg config.EmailConfig, logger *zap.Logger) provider.Mailer {
	if !cfg.Enabled() {
		logger.Info("SMTP not configured, emails are logged only")
		return &LogMailer{logger: logger}
	}

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	return &SMTPMailer{
		from:   cfg.SenderEmail,
		name:   cfg.SenderName,
		send:   func(m *gomail.Message) error { return d.DialAndSend(m) },
		logger: logger,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, msg *provider.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, s.name))
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent", zap.String("subject", msg.Subject))
	return nil
}

// LogMailer is used when SMTP is not configured
type LogMailer struct {
	logger *zap.Logger
}

func (l *LogMailer) Send(ctx context.Context, msg *provider.EmailMessage) error {
	l.logger.Debug("Email suppressed", zap.String("subject", msg.Subject))
	return nil
}

// DecisionMailer renders payment decision emails and sends them through a Mailer
type DecisionMailer struct {
	mailer provider.Mailer
}

func NewDecisionMailer(mailer provider.Mailer) *DecisionMailer {
	return &DecisionMailer{mailer: mailer}
}

func (d *DecisionMailer) SendPaymentDecision(ctx context.Context, p *model.Payment) error {
	return d.mailer.Send(ctx, paymentDecisionEmail(p))
}

// paymentDecisionEmail builds the message sent to the customer once a merchant
// has verified or rejected their payment.
func paymentDecisionEmail(p *model.Payment) *provider.EmailMessage {
	subject := "Your payment has been confirmed"
	headline := "Payment confirmed"
	detail := "The merchant has confirmed receipt of your payment."
	if p.Status == entity.PaymentStatusFailed {
		subject = "Your payment could not be verified"
		headline = "Payment not verified"
		detail = "The merchant could not verify your payment. Please contact them for details."
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="margin: 0; padding: 24px; font-family: Arial, sans-serif; background-color: #f7f9fc;">
	<table align="center" width="560" style="background-color: #ffffff; border-radius: 8px; padding: 32px;">
		<tr><td>
			<h1 style="font-size: 22px; margin-top: 0;">%s</h1>
			<p>Hello %s,</p>
			<p>%s</p>
			<table style="margin-top: 16px; font-size: 14px;">
				<tr><td style="color: #666666; padding-right: 16px;">Amount</td><td><strong>%s %s</strong></td></tr>
				<tr><td style="color: #666666; padding-right: 16px;">Reference</td><td>%s</td></tr>
			</table>
		</td></tr>
	</table>
</body>
</html>`,
		headline,
		html.EscapeString(p.CustomerName),
		detail,
		p.Amount.StringFixed(2),
		html.EscapeString(p.Currency),
		p.ID.String(),
	)

	return &provider.EmailMessage{
		To:       p.CustomerEmail,
		Subject:  subject,
		HTMLBody: body,
	}
}
