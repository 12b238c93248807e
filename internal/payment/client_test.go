package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateSession_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content-type = %q, want application/json", ct)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req["amount"] != 57576.0 {
			t.Fatalf("amount = %v, want 57576", req["amount"])
		}
		if req["return_url"] != "https://shop.example?payment=success" {
			t.Fatalf("return_url = %v", req["return_url"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"payment_id":"p-1","confirmation_url":"https://pay/x","status":"pending"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, code, err := client.CreateSession(ctx, SessionRequest{
		Amount:      "57576",
		Description: "Заказ: Смартфон Galaxy X x1",
		ReturnURL:   "https://shop.example?payment=success",
	})
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", code, http.StatusOK)
	}
	if res.ConfirmationURL != "https://pay/x" || res.PaymentID != "p-1" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestCreateSession_ErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Ключи не настроены"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second)

	res, code, err := client.CreateSession(context.Background(), SessionRequest{Amount: "1"})
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if code != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want %d", code, http.StatusInternalServerError)
	}
	if res.Error != "Ключи не настроены" {
		t.Fatalf("error = %q", res.Error)
	}
}

func TestCreateSession_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second)

	_, code, err := client.CreateSession(context.Background(), SessionRequest{Amount: "1"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
	if code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", code, http.StatusOK)
	}
}

func TestCreateSession_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	client := NewClient(url, time.Second)

	_, code, err := client.CreateSession(context.Background(), SessionRequest{Amount: "1"})
	if !errors.Is(err, ErrPaymentTransport) {
		t.Fatalf("err = %v, want ErrPaymentTransport", err)
	}
	if code != 0 {
		t.Fatalf("status code = %d, want 0", code)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", time.Second)
	if c.endpoint != DefaultEndpoint {
		t.Fatalf("endpoint = %q, want default", c.endpoint)
	}

	c = NewClient("pay.example/api", time.Second)
	if c.endpoint != "https://pay.example/api" {
		t.Fatalf("endpoint = %q, want https scheme added", c.endpoint)
	}
}
