package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SMSSender delivers texts through an HTTP SMS provider
type SMSSender struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSMSSender creates a new SMSSender
func NewSMSSender(baseURL, apiKey string) *SMSSender {
	return &SMSSender{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers an SMS to a phone number
func (s *SMSSender) Send(phone, text string) error {
	payload := map[string]string{
		"to":   NormalizePhone(phone),
		"body": text,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/v1/messages", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// NormalizePhone strips formatting characters and defaults bare 10-digit
// numbers to the +1 country code
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	if len(n) == 10 {
		return "+1" + n
	}
	return "+" + n
}
