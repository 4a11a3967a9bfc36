package notify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

// TwilioClient sends WhatsApp confirmations to tenants. Notification
// delivery is best-effort; the payment is already committed by the time
// anything here runs.
type TwilioClient struct {
	AccountSID string
	AuthToken  string
	FromWA     string
	Log        zerolog.Logger
}

func NewTwilio(accountSID, authToken, fromWA string, log zerolog.Logger) *TwilioClient {
	return &TwilioClient{AccountSID: accountSID, AuthToken: authToken, FromWA: fromWA, Log: log}
}

// Enabled reports whether credentials are configured; callers skip sending
// otherwise.
func (t *TwilioClient) Enabled() bool {
	return t != nil && t.AccountSID != "" && t.AuthToken != "" && t.FromWA != ""
}

func (t *TwilioClient) SendWhatsApp(ctx context.Context, toPhone, body string) error {
	form := url.Values{}
	form.Set("From", t.FromWA)
	form.Set("To", "whatsapp:+"+toPhone)
	form.Set("Body", body)

	endpoint := "https://api.twilio.com/2010-04-01/Accounts/" + t.AccountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		respBody, _ := io.ReadAll(res.Body)
		return &twilioHTTPError{Status: res.StatusCode, Body: string(respBody)}
	}
	return nil
}

type twilioHTTPError struct {
	Status int
	Body   string
}

func (e *twilioHTTPError) Error() string {
	return "twilio send failed"
}
