package payment

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/events"
	"github.com/mmeshcher/storefront/internal/metrics"
	"github.com/mmeshcher/storefront/internal/model"
)

// Gateway описывает платёжный сервис, создающий сессии оплаты.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*SessionResponse, int, error)
}

// Result содержит данные созданной платёжной сессии.
type Result struct {
	ConfirmationURL string
	PaymentID       string
	Status          string
}

// publishTimeout ограничивает отправку события о платеже.
const publishTimeout = 10 * time.Second

// Initiator выполняет одну попытку создания платёжной сессии без повторов.
type Initiator struct {
	gateway   Gateway
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	pending sync.WaitGroup
}

// NewInitiator создаёт инициатор платежей.
func NewInitiator(gateway Gateway, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger) *Initiator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Initiator{
		gateway:   gateway,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Initiate создаёт платёжную сессию для черновика заказа.
// Пока запрос выполняется, защёлка сессии занята, и повторный вызов возвращает ErrPaymentInProgress.
// Событие о результате отправляется в фоне после освобождения защёлки.
func (i *Initiator) Initiate(ctx context.Context, sessionID string, latch *Latch, draft model.OrderDraft) (*Result, error) {
	if !latch.TryAcquire() {
		i.metrics.RecordPaymentSuppressed()
		return nil, ErrPaymentInProgress
	}

	result, err := i.attempt(ctx, latch, draft)

	i.publishAsync(ctx, sessionID, draft, result, err)

	if err != nil {
		i.logger.Warn("payment session failed",
			zap.String("session", sessionID),
			zap.String("amount", draft.Amount.String()),
			zap.Error(err),
		)
		return nil, err
	}

	i.logger.Info("payment session created",
		zap.String("session", sessionID),
		zap.String("payment_id", result.PaymentID),
		zap.String("amount", draft.Amount.String()),
	)
	return result, nil
}

// Close дожидается отправки всех событий.
func (i *Initiator) Close() error {
	i.pending.Wait()
	return nil
}

func (i *Initiator) attempt(ctx context.Context, latch *Latch, draft model.OrderDraft) (*Result, error) {
	defer latch.Release()

	i.metrics.RecordPaymentStarted()
	start := time.Now()

	result, err := i.createSession(ctx, draft)

	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, ErrPaymentTransport):
		outcome = metrics.OutcomeTransport
	case err != nil:
		outcome = metrics.OutcomeRejected
	}
	i.metrics.RecordPaymentFinished(outcome, time.Since(start))

	return result, err
}

func (i *Initiator) createSession(ctx context.Context, draft model.OrderDraft) (*Result, error) {
	resp, statusCode, err := i.gateway.CreateSession(ctx, SessionRequest{
		Amount:      json.Number(draft.Amount.String()),
		Description: draft.Description,
		ReturnURL:   draft.ReturnURL,
	})
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return nil, &RejectedError{StatusCode: statusCode, Message: MessageRejected}
		}
		if errors.Is(err, ErrPaymentTransport) {
			return nil, err
		}
		return nil, errors.Join(ErrPaymentTransport, err)
	}

	if statusCode >= 200 && statusCode < 300 && resp.ConfirmationURL != "" {
		return &Result{
			ConfirmationURL: resp.ConfirmationURL,
			PaymentID:       resp.PaymentID,
			Status:          resp.Status,
		}, nil
	}

	msg := resp.Error
	if msg == "" {
		msg = MessageRejected
	}
	return nil, &RejectedError{StatusCode: statusCode, Message: msg, Details: resp.Details}
}

func (i *Initiator) publishAsync(ctx context.Context, sessionID string, draft model.OrderDraft, result *Result, err error) {
	i.pending.Add(1)
	go func() {
		defer i.pending.Done()

		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		i.publish(pubCtx, sessionID, draft, result, err)
	}()
}

func (i *Initiator) publish(ctx context.Context, sessionID string, draft model.OrderDraft, result *Result, err error) {
	event := events.PaymentEvent{
		Type:        events.TypePaymentSessionCreated,
		SessionID:   sessionID,
		Amount:      draft.Amount.String(),
		Description: draft.Description,
	}
	if err != nil {
		event.Type = events.TypePaymentSessionFailed
		event.Reason = err.Error()
	} else {
		event.PaymentID = result.PaymentID
		event.ConfirmationURL = result.ConfirmationURL
	}

	if pubErr := i.publisher.Publish(ctx, event); pubErr != nil {
		i.logger.Warn("publish payment event failed",
			zap.String("session", sessionID),
			zap.String("type", string(event.Type)),
			zap.Error(pubErr),
		)
	}
}
