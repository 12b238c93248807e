// Package session хранит состояние посетителей витрины в памяти.
package session

import (
	"sync"
	"time"

	"github.com/mmeshcher/storefront/internal/cart"
	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/view"
)

// Session хранит корзину, промокод, раздел и защёлку оплаты одного посетителя.
// Изменения сериализуются мьютексом сессии; оплата охраняется только защёлкой.
type Session struct {
	id string

	mu       sync.Mutex
	cart     *cart.Cart
	promo    *cart.Promo
	view     *view.Selector
	lastSeen time.Time

	latch payment.Latch
}

// State содержит снимок состояния сессии.
type State struct {
	Lines      []model.CartLine
	Totals     model.Totals
	Promo      *model.PromoCode
	Section    model.Section
	Processing bool
}

func newSession(id string, promos cart.PromoTable, now time.Time) *Session {
	return &Session{
		id:       id,
		cart:     cart.New(),
		promo:    cart.NewPromo(promos),
		view:     view.NewSelector(),
		lastSeen: now,
	}
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// Latch возвращает защёлку оплаты сессии.
func (s *Session) Latch() *payment.Latch {
	return &s.latch
}

// Add добавляет товар в корзину.
func (s *Session) Add(p model.Product) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Add(p)
	return s.stateLocked()
}

// Remove удаляет позицию из корзины.
func (s *Session) Remove(productID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(productID)
	return s.stateLocked()
}

// SetQuantity меняет количество товара в корзине.
func (s *Session) SetQuantity(productID int64, quantity int) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.SetQuantity(productID, quantity)
	return s.stateLocked()
}

// ApplyPromo применяет промокод. При ошибке скидка не меняется.
func (s *Session) ApplyPromo(code string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.promo.Apply(code); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

// SwitchSection переключает раздел витрины.
func (s *Session) SwitchSection(section model.Section) (model.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.view.Switch(section); err != nil {
		return s.view.Active(), err
	}
	return s.view.Active(), nil
}

// Section возвращает текущий раздел витрины.
func (s *Session) Section() model.Section {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view.Active()
}

// State возвращает снимок состояния. Итоги рассчитываются при каждом чтении.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

// Draft собирает черновик заказа по текущему содержимому корзины.
func (s *Session) Draft(origin string) model.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cart.Draft(s.cart.Lines(), s.promo.Percent(), origin)
}

func (s *Session) stateLocked() State {
	lines := s.cart.Lines()
	state := State{
		Lines:      lines,
		Totals:     cart.Compute(lines, s.promo.Percent()),
		Section:    s.view.Active(),
		Processing: s.latch.Busy(),
	}
	if applied, ok := s.promo.Applied(); ok {
		state.Promo = &applied
	}
	return state
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
