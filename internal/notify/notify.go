// Package notify relays contact-form submissions to an external messaging
// bot. The relay is fire-and-forget from the visitor's perspective: the
// message is persisted first and a failed relay is only logged.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier delivers a plain-text message to the configured channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// FromEnv picks a notifier from the environment: Telegram when
// TELEGRAM_BOT_TOKEN is set, Twilio when TWILIO_FROM_NUMBER is, and a
// log-only fallback otherwise.
func FromEnv() Notifier {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		return NewTelegramNotifier(token, os.Getenv("TELEGRAM_CHAT_ID"))
	}
	if from := os.Getenv("TWILIO_FROM_NUMBER"); from != "" {
		return NewTwilioNotifier(from, os.Getenv("TWILIO_TO_NUMBER"))
	}
	log.Println("No messaging bot configured, contact messages will only be stored")
	return LogNotifier{}
}

// TelegramNotifier posts to the Telegram bot API.
type TelegramNotifier struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		baseURL: "https://api.telegram.org",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	form := url.Values{
		"chat_id": {n.chatID},
		"text":    {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("error building telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}

// TwilioNotifier sends an SMS via the Twilio REST API. Credentials come from
// TWILIO_ACCOUNT_SID/TWILIO_AUTH_TOKEN, read by the Twilio client itself.
type TwilioNotifier struct {
	from   string
	to     string
	client *twilio.RestClient
}

func NewTwilioNotifier(from, to string) *TwilioNotifier {
	return &TwilioNotifier{
		from:   from,
		to:     to,
		client: twilio.NewRestClient(),
	}
}

func (n *TwilioNotifier) Send(ctx context.Context, text string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(n.from)
	params.SetTo(n.to)
	params.SetBody(text)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("error sending twilio message: %w", err)
	}
	return nil
}

// LogNotifier is the fallback when no bot is configured.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, text string) error {
	log.Printf("Contact message (no relay configured):\n%s", text)
	return nil
}
