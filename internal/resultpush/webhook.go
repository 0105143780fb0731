package resultpush

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hilo-casino/internal/game"
)

const (
	WebhookFormatJSON    = "json"
	WebhookFormatDiscord = "discord"
)

// WebhookSink posts each settled round to an HTTP endpoint, either as the raw
// record or as a Discord-compatible embed. A non-empty secret signs the body
// with HMAC-SHA256 in X-Hilo-Signature.
type WebhookSink struct {
	endpoint string
	secret   string
	format   string
	client   *http.Client
}

func NewWebhookSink(endpoint, secret, format string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != WebhookFormatDiscord {
		format = WebhookFormatJSON
	}
	return &WebhookSink{
		endpoint: endpoint,
		secret:   secret,
		format:   format,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, rec RoundRecord) error {
	var body any = rec
	if s.format == WebhookFormatDiscord {
		body = discordPayload(rec)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		req.Header.Set("X-Hilo-Signature", Sign(s.secret, raw))
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook push failed with status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp"`
	Fields      []embedField `json:"fields"`
	Footer      struct {
		Text string `json:"text"`
	} `json:"footer"`
}

func discordPayload(rec RoundRecord) map[string]any {
	color := 0x3498db
	if rec.Side == game.SideHigh {
		color = 0xe67e22
	}
	e := embed{
		Title:       fmt.Sprintf("%s · round #%d", rec.RoomID, rec.RoundID),
		Description: fmt.Sprintf("🎲 %d + %d + %d = **%d** → **%s**", rec.Dice[0], rec.Dice[1], rec.Dice[2], rec.Sum, rec.Side),
		Color:       color,
		Timestamp:   rec.SettledAt.UTC().Format(time.RFC3339),
		Fields:      make([]embedField, 0, len(rec.Payouts)),
	}
	for i, p := range rec.Payouts {
		if i == 10 {
			e.Fields = append(e.Fields, embedField{Name: "…", Value: fmt.Sprintf("+%d more", len(rec.Payouts)-i)})
			break
		}
		sign := "-"
		if p.Won {
			sign = "+"
		}
		e.Fields = append(e.Fields, embedField{
			Name:   p.Name,
			Value:  fmt.Sprintf("%s %s%d (balance %d)", p.Side, sign, p.Amount, p.Balance),
			Inline: true,
		})
	}
	e.Footer.Text = "seed " + rec.Seed
	return map[string]any{"embeds": []embed{e}}
}
