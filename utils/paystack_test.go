package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(baseURL string) *PaystackClient {
	return &PaystackClient{
		BaseURL:     baseURL,
		SecretKey:   "sk_test_xyz",
		CallbackURL: "https://app.example.com/verify",
		HTTP:        &http.Client{Timeout: 5 * time.Second},
	}
}

func TestPaystackInitialize_SendsMinorUnits(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_xyz" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]interface{}{
				"authorization_url": "https://checkout.paystack.com/abc",
				"access_code":       "abc",
				"reference":         "ref-1",
			},
		})
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).Initialize(context.Background(), "user@example.com", 250.5, PaystackMetadata{UserID: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Reference != "ref-1" || data.AuthorizationURL == "" {
		t.Fatalf("unexpected data: %+v", data)
	}
	if got["amount"] != float64(25050) {
		t.Fatalf("expected amount in minor units 25050, got %v", got["amount"])
	}
	if got["callback_url"] != "https://app.example.com/verify" {
		t.Fatalf("unexpected callback_url %v", got["callback_url"])
	}
}

func TestPaystackInitialize_FalsyStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid key",
		})
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Initialize(context.Background(), "user@example.com", 100, PaystackMetadata{}); err == nil {
		t.Fatal("expected an error for falsy gateway status")
	}
}

func TestPaystackVerify_ParsesTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ref-9" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]interface{}{
				"status":           "success",
				"gateway_response": "Successful",
				"amount":           50000,
				"currency":         "NGN",
				"channel":          "card",
				"authorization":    map[string]interface{}{"authorization_code": "AUTH_q1"},
				"metadata":         map[string]interface{}{"user_id": 3, "order_id": 7},
			},
		})
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).Verify(context.Background(), "ref-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Status != "success" || data.Amount != 50000 || data.Currency != "NGN" {
		t.Fatalf("unexpected data: %+v", data)
	}
	if data.Authorization.AuthorizationCode != "AUTH_q1" {
		t.Fatalf("unexpected authorization: %+v", data.Authorization)
	}
	if data.Metadata.OrderID != 7 {
		t.Fatalf("metadata not echoed back: %+v", data.Metadata)
	}
}

func TestPaystackVerify_GatewayErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Transaction reference not found",
		})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Verify(context.Background(), "ref-missing")
	if err == nil {
		t.Fatal("expected an error")
	}
}
