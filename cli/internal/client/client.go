package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RelayClient talks to a running relay instance.
type RelayClient struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *RelayClient {
	return &RelayClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// DeliveryOutcome mirrors the relay's response body for one delivery.
type DeliveryOutcome struct {
	OK                 bool   `json:"ok"`
	ForwardedStatus    int    `json:"forwardedStatus,omitempty"`
	Attempts           int    `json:"attempts,omitempty"`
	Target             string `json:"target,omitempty"`
	Error              string `json:"error,omitempty"`
	Details            string `json:"details,omitempty"`
	ValidationResponse string `json:"validationResponse,omitempty"`
}

// SendEvent posts a raw JSON event (object or array) to the relay.
func (c *RelayClient) SendEvent(payload []byte) (*DeliveryOutcome, error) {
	return c.post(payload)
}

// Validate simulates the event source's subscription validation handshake
// and returns the echoed code.
func (c *RelayClient) Validate(code string) (*DeliveryOutcome, error) {
	body, err := json.Marshal([]map[string]any{
		{
			"eventType": "Microsoft.EventGrid.SubscriptionValidationEvent",
			"data":      map[string]string{"validationCode": code},
		},
	})
	if err != nil {
		return nil, err
	}
	return c.post(body)
}

// Status fetches the relay's readiness report.
func (c *RelayClient) Status() (map[string]any, error) {
	resp, err := c.client.Get(c.baseURL + "/readyz")
	if err != nil {
		return nil, fmt.Errorf("relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay status %d", resp.StatusCode)
	}

	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}

func (c *RelayClient) post(payload []byte) (*DeliveryOutcome, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/events", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned status %d: %s", resp.StatusCode, raw)
	}

	var outcome DeliveryOutcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		return nil, fmt.Errorf("decode outcome: %w", err)
	}
	return &outcome, nil
}
