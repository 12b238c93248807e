// Package service реализует бизнес-логику витрины магазина.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/metrics"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/session"
)

// ErrProductNotFound возвращается, если товара нет в каталоге.
var ErrProductNotFound = errors.New("product not found")

// Catalog описывает каталог товаров и таблицу промокодов, используемые сервисом.
type Catalog interface {
	Products() []model.Product
	Product(id int64) (model.Product, bool)
	Promos() []model.PromoCode
	LookupPromo(code string) (model.PromoCode, bool)
}

// Payments описывает инициатор платежей.
type Payments interface {
	Initiate(ctx context.Context, sessionID string, latch *payment.Latch, draft model.OrderDraft) (*payment.Result, error)
}

// Service содержит бизнес-логику витрины.
type Service struct {
	catalog  Catalog
	sessions *session.Store
	payments Payments
	metrics  *metrics.Metrics
	logger   *zap.Logger
	closers  []func() error
}

// NewService создаёт сервис витрины.
func NewService(catalog Catalog, sessions *session.Store, payments Payments, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions.OnChange(m.SetActiveSessions)

	return &Service{
		catalog:  catalog,
		sessions: sessions,
		payments: payments,
		metrics:  m,
		logger:   logger,
	}
}

// OnClose регистрирует функцию освобождения ресурсов, вызываемую из Close.
func (s *Service) OnClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewSession создаёт сессию посетителя.
func (s *Service) NewSession() string {
	return s.sessions.Create()
}

// ResumeSession продлевает сессию посетителя и сообщает, существует ли она.
func (s *Service) ResumeSession(id string) bool {
	return s.sessions.Touch(id)
}

// Products возвращает каталог товаров.
func (s *Service) Products() []model.Product {
	return s.catalog.Products()
}

// Product возвращает товар по идентификатору.
func (s *Service) Product(id int64) (model.Product, error) {
	p, ok := s.catalog.Product(id)
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Promos возвращает таблицу промокодов.
func (s *Service) Promos() []model.PromoCode {
	return s.catalog.Promos()
}

// Cart возвращает состояние корзины посетителя.
func (s *Service) Cart(ctx context.Context, sessionID string) (session.State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return session.State{}, err
	}
	return sess.State(), nil
}

// AddToCart добавляет товар каталога в корзину.
func (s *Service) AddToCart(ctx context.Context, sessionID string, productID int64) (session.State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return session.State{}, err
	}

	p, ok := s.catalog.Product(productID)
	if !ok {
		return session.State{}, ErrProductNotFound
	}

	s.metrics.RecordCartOperation("add")
	return sess.Add(p), nil
}

// RemoveFromCart удаляет позицию из корзины. Отсутствие позиции не ошибка.
func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (session.State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return session.State{}, err
	}

	s.metrics.RecordCartOperation("remove")
	return sess.Remove(productID), nil
}

// SetQuantity задаёт количество товара в корзине; неположительное значение удаляет позицию.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (session.State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return session.State{}, err
	}

	s.metrics.RecordCartOperation("set_quantity")
	return sess.SetQuantity(productID, quantity), nil
}

// ApplyPromo применяет промокод к корзине посетителя.
func (s *Service) ApplyPromo(ctx context.Context, sessionID, code string) (session.State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return session.State{}, err
	}

	state, err := sess.ApplyPromo(code)
	s.metrics.RecordPromo(!errors.Is(err, cart.ErrPromoNotFound))
	return state, err
}

// Section возвращает текущий раздел витрины посетителя.
func (s *Service) Section(ctx context.Context, sessionID string) (model.Section, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", err
	}
	return sess.Section(), nil
}

// SwitchSection переключает раздел витрины посетителя.
func (s *Service) SwitchSection(ctx context.Context, sessionID string, section model.Section) (model.Section, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", err
	}
	return sess.SwitchSection(section)
}

// Checkout создаёт платёжную сессию по содержимому корзины.
// Запрос к платёжному сервису не отменяется при обрыве клиентского соединения.
func (s *Service) Checkout(ctx context.Context, sessionID, origin string) (*payment.Result, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	draft := sess.Draft(origin)
	return s.payments.Initiate(context.WithoutCancel(ctx), sessionID, sess.Latch(), draft)
}

// StartSessionEviction запускает фоновое удаление неактивных сессий.
func (s *Service) StartSessionEviction(ctx context.Context, interval time.Duration) {
	s.logger.Info("session eviction started", zap.Duration("interval", interval))
	s.sessions.StartEviction(ctx, interval)
}
