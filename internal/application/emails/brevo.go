package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender sends transactional emails. Nil = no-op.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, firstName string) error
	SendOrderOutcome(ctx context.Context, toEmail, fullname, orderNumber, outcome string, reason *string) error
}

// BrevoClient sends emails via the Brevo API (BREVO_API_KEY, MAIL_FROM).
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@equify.app"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Equify"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome sends the welcome email after account creation.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, firstName string) error {
	if c.APIKey == "" {
		return nil
	}
	if firstName == "" {
		firstName = "there"
	}
	content := fmt.Sprintf(`
    <h1>Welcome to Equify, %s!</h1>
    <p>Your account has been created. Once your company links your employee record you will see your grants, vesting schedule and portfolios on your dashboard.</p>
    <p>— The Equify Team</p>
`, EscapeHTML(firstName))
	return c.send(ctx, toEmail, "Welcome to Equify", EmailLayout(content))
}

// SendOrderOutcome notifies an employee that their exercise order was
// processed or rejected.
func (c *BrevoClient) SendOrderOutcome(ctx context.Context, toEmail, fullname, orderNumber, outcome string, reason *string) error {
	if c.APIKey == "" {
		return nil
	}
	var content string
	switch outcome {
	case "processed":
		content = fmt.Sprintf(`
    <h1>Exercise Order %s Settled</h1>
    <p>Hi %s,</p>
    <p>Your exercise order has been processed. The exercise cost was debited from your cash portfolio and the exercised shares are now in your vested-share portfolio.</p>
    <p>— The Equify Team</p>
`, EscapeHTML(orderNumber), EscapeHTML(fullname))
	default:
		detail := ""
		if reason != nil && *reason != "" {
			detail = fmt.Sprintf("<p>Reason: %s</p>", EscapeHTML(*reason))
		}
		content = fmt.Sprintf(`
    <h1>Exercise Order %s Rejected</h1>
    <p>Hi %s,</p>
    <p>Your exercise order was rejected. Your vesting event remains exercisable and you may submit a new order.</p>
    %s
    <p>— The Equify Team</p>
`, EscapeHTML(orderNumber), EscapeHTML(fullname), detail)
	}
	subject := fmt.Sprintf("Exercise Order %s %s", orderNumber, outcome)
	return c.send(ctx, toEmail, subject, EmailLayout(content))
}
