package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/storefront/internal/cart"
)

// ErrSessionNotFound возвращается для неизвестного или истёкшего идентификатора сессии.
var ErrSessionNotFound = errors.New("session not found")

// Store хранит сессии посетителей и удаляет неактивные.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	promos cart.PromoTable
	ttl    time.Duration
	now    func() time.Time

	onChange func(active int)
}

// NewStore создаёт хранилище сессий. Сессии без обращений дольше ttl удаляются.
func NewStore(promos cart.PromoTable, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		promos:   promos,
		ttl:      ttl,
		now:      time.Now,
	}
}

// OnChange задаёт обработчик изменения числа сессий.
func (st *Store) OnChange(fn func(active int)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.onChange = fn
}

// Create создаёт новую сессию и возвращает её идентификатор.
func (st *Store) Create() string {
	id := uuid.NewString()

	st.mu.Lock()
	st.sessions[id] = newSession(id, st.promos, st.now())
	active := len(st.sessions)
	notify := st.onChange
	st.mu.Unlock()

	if notify != nil {
		notify(active)
	}
	return id
}

// Get возвращает сессию и отмечает обращение к ней.
// Отметка ставится под блокировкой хранилища, поэтому Evict не удалит сессию между поиском и отметкой.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.touch(st.now())
	return s, nil
}

// Touch отмечает обращение к сессии и сообщает, существует ли она.
func (st *Store) Touch(id string) bool {
	_, err := st.Get(id)
	return err == nil
}

// Exists сообщает, существует ли сессия.
func (st *Store) Exists(id string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()

	_, ok := st.sessions[id]
	return ok
}

// Len возвращает число сессий.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.sessions)
}

// StartEviction запускает фоновое удаление неактивных сессий и блокируется до отмены контекста.
func (st *Store) StartEviction(ctx context.Context, interval time.Duration) {
	if st.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Evict()
		}
	}
}

// Evict удаляет сессии, к которым не обращались дольше ttl, и возвращает их число.
// Сессии с незавершённой оплатой не удаляются.
func (st *Store) Evict() int {
	deadline := st.now().Add(-st.ttl)

	st.mu.Lock()
	removed := 0
	for id, s := range st.sessions {
		if s.latch.Busy() {
			continue
		}
		if s.idleSince().Before(deadline) {
			delete(st.sessions, id)
			removed++
		}
	}
	active := len(st.sessions)
	notify := st.onChange
	st.mu.Unlock()

	if removed > 0 && notify != nil {
		notify(active)
	}
	return removed
}
