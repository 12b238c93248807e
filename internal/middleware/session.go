// Package middleware содержит HTTP middleware витрины магазина.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

const sessionCookieName = "storefront_session"

// SessionStore описывает хранилище сессий, с которым работает middleware.
type SessionStore interface {
	ResumeSession(id string) bool
	NewSession() string
}

// SessionMiddleware привязывает запрос к сессии посетителя по подписанному cookie.
type SessionMiddleware struct {
	secretKey []byte
	store     SessionStore
	ttl       time.Duration
}

// NewSessionMiddleware создаёт middleware сессий. Пустой секрет заменяется случайным ключом.
func NewSessionMiddleware(secret string, store SessionStore, ttl time.Duration) *SessionMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &SessionMiddleware{
		secretKey: key,
		store:     store,
		ttl:       ttl,
	}
}

// Middleware находит сессию по cookie или создаёт новую и кладёт её идентификатор в контекст запроса.
func (m *SessionMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if id, ok := m.parseCookie(cookie.Value); ok && m.store.ResumeSession(id) {
				sessionID = id
			}
		}

		if sessionID == "" {
			sessionID = m.store.NewSession()
			m.SetSessionCookie(w, sessionID)
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetSessionCookie устанавливает cookie сессии.
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    m.sign(sessionID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if m.ttl > 0 {
		cookie.Expires = time.Now().Add(m.ttl)
	}

	http.SetCookie(w, cookie)
}

func (m *SessionMiddleware) sign(sessionID string) string {
	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(sessionID))
	return sessionID + "." + hex.EncodeToString(mac.Sum(nil))
}

func (m *SessionMiddleware) parseCookie(cookieValue string) (string, bool) {
	idx := strings.LastIndex(cookieValue, ".")
	if idx <= 0 || idx == len(cookieValue)-1 {
		return "", false
	}

	sessionID := cookieValue[:idx]
	if !hmac.Equal([]byte(m.sign(sessionID)), []byte(cookieValue)) {
		return "", false
	}

	return sessionID, true
}

// GetSessionIDFromContext извлекает идентификатор сессии из контекста запроса.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}
