package pushgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Gateway represents a push notification gateway interface
type Gateway interface {
	// SendPush delivers a message to the device identified by deviceToken
	// and returns the provider's message ID.
	SendPush(ctx context.Context, deviceToken, title, body string) (string, error)
	Name() string
}

// FCMGateway sends pushes through Firebase Cloud Messaging
type FCMGateway struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// APNSGateway sends pushes through an APNs relay
type APNSGateway struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// MockGateway is a push gateway for local development and testing
type MockGateway struct {
	GatewayName string

	// Sent records every message passed to SendPush.
	Sent []MockMessage
}

// MockMessage is one message captured by the MockGateway
type MockMessage struct {
	DeviceToken string
	Title       string
	Body        string
}

// NewFCMGateway creates a new FCMGateway
func NewFCMGateway(baseURL, apiKey string) Gateway {
	return &FCMGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewAPNSGateway creates a new APNSGateway
func NewAPNSGateway(baseURL, apiKey string) Gateway {
	return &APNSGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMockGateway creates a new MockGateway
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{GatewayName: name}
}

type pushRequest struct {
	To           string `json:"to"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	CollapseKey  string `json:"collapse_key,omitempty"`
	TimeToLive   int    `json:"time_to_live,omitempty"`
	DeliveryMode string `json:"delivery_mode,omitempty"`
}

type pushResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// SendPush sends a push through FCM
func (g *FCMGateway) SendPush(ctx context.Context, deviceToken, title, body string) (string, error) {
	return sendJSON(ctx, g.httpClient, g.BaseURL+"/fcm/send", "key="+g.APIKey, pushRequest{
		To:    deviceToken,
		Title: title,
		Body:  body,
	})
}

// Name returns the gateway name
func (g *FCMGateway) Name() string { return "FCM" }

// SendPush sends a push through the APNs relay
func (g *APNSGateway) SendPush(ctx context.Context, deviceToken, title, body string) (string, error) {
	return sendJSON(ctx, g.httpClient, g.BaseURL+"/push", "Bearer "+g.APIKey, pushRequest{
		To:    deviceToken,
		Title: title,
		Body:  body,
	})
}

// Name returns the gateway name
func (g *APNSGateway) Name() string { return "APNS" }

// SendPush records the message and returns a generated message ID
func (g *MockGateway) SendPush(ctx context.Context, deviceToken, title, body string) (string, error) {
	g.Sent = append(g.Sent, MockMessage{DeviceToken: deviceToken, Title: title, Body: body})
	return fmt.Sprintf("%s-MOCK-%s", g.GatewayName, uuid.NewString()), nil
}

// Name returns the gateway name
func (g *MockGateway) Name() string { return g.GatewayName }

func sendJSON(ctx context.Context, client *http.Client, url, authorization string, payload pushRequest) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("push gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed pushResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse push gateway response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("push gateway error: %s", parsed.Error)
	}
	return parsed.MessageID, nil
}
