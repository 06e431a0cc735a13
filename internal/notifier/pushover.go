package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"IndexNotifier/internal/model"
)

// DefaultPushoverEndpoint is the Pushover message API.
const DefaultPushoverEndpoint = "https://api.pushover.net/1/messages.json"

// PushoverNotifier sends messages with an image attachment via the Pushover API.
type PushoverNotifier struct {
	Endpoint string
	User     string
	Token    string
	Client   *http.Client
	Log      *slog.Logger
}

// NewPushoverNotifier creates a notifier with optional proxy support.
func NewPushoverNotifier(user, token, proxyURL string, log *slog.Logger) *PushoverNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &PushoverNotifier{
		Endpoint: DefaultPushoverEndpoint,
		User:     user,
		Token:    token,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Log: log,
	}
}

// Send posts message as HTML with image attached as chart.png. A nil image sends text only.
// Any non-2xx response is an error.
func (p *PushoverNotifier) Send(ctx context.Context, message string, image io.Reader) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := []struct{ name, value string }{
		{"user", p.User},
		{"token", p.Token},
		{"html", "1"},
		{"message", message},
	}
	if image != nil {
		fields = append(fields, struct{ name, value string }{"attachment_type", "image/png"})
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("%w: write field %s: %w", model.ErrDelivery, f.name, err)
		}
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="attachment"; filename="chart.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("%w: create attachment: %w", model.ErrDelivery, err)
		}
		if _, err := io.Copy(part, image); err != nil {
			return fmt.Errorf("%w: copy attachment: %w", model.ErrDelivery, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%w: close multipart: %w", model.ErrDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, &body)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrDelivery, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send message: %w", model.ErrDelivery, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: pushover API error: status %d, body: %s", model.ErrDelivery, resp.StatusCode, string(respBody))
	}

	var result struct {
		Status  int    `json:"status"`
		Request string `json:"request"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		p.Log.Warn("pushover response not understood", "err", err)
		return nil
	}
	p.Log.Info("message sent", "request", result.Request)
	return nil
}
