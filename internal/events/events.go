// Package events публикует события платёжных сессий во внешнюю шину.
package events

import (
	"context"
	"time"
)

// Type описывает тип события.
type Type string

const (
	// TypePaymentSessionCreated означает, что платёжная сессия создана.
	TypePaymentSessionCreated Type = "payment_session_created"
	// TypePaymentSessionFailed означает, что платёжную сессию создать не удалось.
	TypePaymentSessionFailed Type = "payment_session_failed"
)

// PaymentEvent описывает попытку создания платёжной сессии.
type PaymentEvent struct {
	ID              string    `json:"id"`
	Type            Type      `json:"type"`
	SessionID       string    `json:"session_id"`
	Amount          string    `json:"amount"`
	Description     string    `json:"description"`
	PaymentID       string    `json:"payment_id,omitempty"`
	ConfirmationURL string    `json:"confirmation_url,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Publisher публикует события платёжных сессий.
type Publisher interface {
	Publish(ctx context.Context, event PaymentEvent) error
	Close() error
}

// NopPublisher отбрасывает события. Используется, когда брокер не настроен.
type NopPublisher struct{}

// Publish ничего не делает.
func (NopPublisher) Publish(context.Context, PaymentEvent) error { return nil }

// Close ничего не делает.
func (NopPublisher) Close() error { return nil }
