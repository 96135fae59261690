package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

// PaystackClient wraps the hosted-payment HTTP contract: initialize a
// transaction to obtain a redirect URL, then verify it by reference. The
// secret key authorizes every call.
type PaystackClient struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
	HTTP        *http.Client
}

// NewPaystackClient builds the client from PAYSTACK_* env vars.
func NewPaystackClient() *PaystackClient {
	base := os.Getenv("PAYSTACK_BASE_URL")
	if base == "" {
		base = defaultPaystackBaseURL
	}
	return &PaystackClient{
		BaseURL:     strings.TrimRight(base, "/"),
		SecretKey:   os.Getenv("PAYSTACK_SECRET_KEY"),
		CallbackURL: os.Getenv("PAYSTACK_CALLBACK_URL"),
		HTTP:        &http.Client{Timeout: 30 * time.Second},
	}
}

// PaystackMetadata is echoed back verbatim by the gateway at verify time.
type PaystackMetadata struct {
	UserID  uint `json:"user_id,omitempty"`
	OrderID uint `json:"order_id,omitempty"`
}

// PaystackInitializeData from POST /transaction/initialize
type PaystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackInitializeResponse struct {
	Status  bool                   `json:"status"`
	Message string                 `json:"message"`
	Data    PaystackInitializeData `json:"data"`
}

// PaystackVerifyData from GET /transaction/verify/{reference}
type PaystackVerifyData struct {
	Status          string `json:"status"`
	GatewayResponse string `json:"gateway_response"`
	Amount          int64  `json:"amount"` // minor units
	Currency        string `json:"currency"`
	Channel         string `json:"channel"`
	Authorization   struct {
		AuthorizationCode string `json:"authorization_code"`
	} `json:"authorization"`
	Metadata PaystackMetadata `json:"metadata"`
}

type paystackVerifyResponse struct {
	Status  bool               `json:"status"`
	Message string             `json:"message"`
	Data    PaystackVerifyData `json:"data"`
}

// Initialize creates a hosted payment session. The amount is converted to
// minor units on the wire.
func (c *PaystackClient) Initialize(ctx context.Context, email string, amount float64, metadata PaystackMetadata) (*PaystackInitializeData, error) {
	bodyObj := map[string]interface{}{
		"email":        email,
		"amount":       int64(amount * 100),
		"callback_url": c.CallbackURL,
		"metadata":     metadata,
	}
	body, _ := json.Marshal(bodyObj)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	var result paystackInitializeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse initialize response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !result.Status {
		msg := result.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, fmt.Errorf("failed to initialize payment: %s", msg)
	}
	return &result.Data, nil
}

// Verify looks up a transaction by reference. A nil error only means the
// gateway answered; callers must still check Data.Status == "success".
func (c *PaystackClient) Verify(ctx context.Context, reference string) (*PaystackVerifyData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	var result paystackVerifyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse verify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !result.Status {
		msg := result.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, fmt.Errorf("failed to verify payment: %s", msg)
	}
	return &result.Data, nil
}
