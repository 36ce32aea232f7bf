package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Notifier sends a push message to a device token. Delivery is best effort;
// callers never treat a send failure as fatal.
type Notifier interface {
	Send(token, title, body string) error
}

// ExpoClient talks to the Expo push HTTP API.
type ExpoClient struct {
	Endpoint string
	HTTP     *http.Client
}

func NewExpoClient(endpoint string) *ExpoClient {
	return &ExpoClient{Endpoint: endpoint, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

type expoMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

type expoReceipt struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

func (c *ExpoClient) Send(token, title, body string) error {
	payload, err := json.Marshal(expoMessage{To: token, Title: title, Body: body, Sound: "default"})
	if err != nil {
		return fmt.Errorf("encode push: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push API returned status %d: %s", resp.StatusCode, raw)
	}
	var receipt expoReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		// Expo answered 200 with an unexpected body; the message may still be queued.
		return nil
	}
	if receipt.Data.Status == "error" {
		return fmt.Errorf("push rejected: %s", receipt.Data.Message)
	}
	return nil
}
