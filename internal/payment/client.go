// Package payment создаёт платёжные сессии во внешнем платёжном сервисе.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint задаёт адрес функции создания платежа.
const DefaultEndpoint = "https://functions.poehali.dev/e9a21470-802a-415b-b446-8393e96304ef"

const maxResponseSize = 1 << 20

// Client инкапсулирует HTTP-взаимодействие с платёжным сервисом.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// SessionRequest описывает тело запроса на создание платёжной сессии.
type SessionRequest struct {
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	ReturnURL   string      `json:"return_url"`
}

// SessionResponse описывает ответ платёжного сервиса.
type SessionResponse struct {
	PaymentID       string `json:"payment_id,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
	Status          string `json:"status,omitempty"`
	Error           string `json:"error,omitempty"`
	Details         string `json:"details,omitempty"`
}

// NewClient создаёт клиент платёжного сервиса. Таймаут ограничивает только транспорт.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateSession отправляет запрос на создание платёжной сессии.
// Ошибка транспорта оборачивает ErrPaymentTransport, нечитаемое тело оборачивает ErrMalformedResponse.
func (c *Client) CreateSession(ctx context.Context, sessionReq SessionRequest) (*SessionResponse, int, error) {
	body, err := json.Marshal(sessionReq)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPaymentTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", ErrPaymentTransport, err)
	}

	var result SessionResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &result, resp.StatusCode, nil
}
