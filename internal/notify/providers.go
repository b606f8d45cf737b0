// internal/notify/providers.go

package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Email is one outbound email
type Email struct {
	To      string
	Subject string
	Body    string
}

// SMS is one outbound text message
type SMS struct {
	To      string
	Message string
}

// EmailProvider defines the email provider interface
type EmailProvider interface {
	SendEmail(ctx context.Context, email *Email) error
}

// SMSProvider defines the SMS provider interface
type SMSProvider interface {
	SendSMS(ctx context.Context, sms *SMS) error
}

// SendGridEmailProvider implements EmailProvider using SendGrid
type SendGridEmailProvider struct {
	apiKey string
	from   string
}

func NewSendGridEmailProvider(apiKey, from string) EmailProvider {
	return &SendGridEmailProvider{apiKey: apiKey, from: from}
}

func (p *SendGridEmailProvider) SendEmail(ctx context.Context, email *Email) error {
	from := mail.NewEmail("PickMe", p.from)
	to := mail.NewEmail("", email.To)

	message := mail.NewSingleEmail(from, email.Subject, to, email.Body, "")
	client := sendgrid.NewSendClient(p.apiKey)

	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", response.StatusCode)
	}

	return nil
}

// TwilioSMSProvider implements SMSProvider using Twilio
type TwilioSMSProvider struct {
	client      *twilio.RestClient
	phoneNumber string
}

func NewTwilioSMSProvider(accountSID, authToken, phoneNumber string) SMSProvider {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSProvider{client: client, phoneNumber: phoneNumber}
}

func (p *TwilioSMSProvider) SendSMS(ctx context.Context, sms *SMS) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(sms.To)
	params.SetFrom(p.phoneNumber)
	params.SetBody(sms.Message)

	_, err := p.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS via Twilio: %w", err)
	}

	return nil
}

// MockEmailProvider implements EmailProvider for development and tests
type MockEmailProvider struct {
	SentEmails []Email
}

func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{SentEmails: make([]Email, 0)}
}

func (p *MockEmailProvider) SendEmail(ctx context.Context, email *Email) error {
	p.SentEmails = append(p.SentEmails, *email)
	return nil
}

// MockSMSProvider implements SMSProvider for development and tests
type MockSMSProvider struct {
	SentMessages []SMS
}

func NewMockSMSProvider() *MockSMSProvider {
	return &MockSMSProvider{SentMessages: make([]SMS, 0)}
}

func (p *MockSMSProvider) SendSMS(ctx context.Context, sms *SMS) error {
	p.SentMessages = append(p.SentMessages, *sms)
	return nil
}
