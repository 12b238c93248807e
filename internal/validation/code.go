// Package validation содержит функции валидации входных данных.
package validation

import (
	"strings"
	"unicode"
)

const maxPromoCodeLen = 32

// NormalizePromoCode приводит промокод к каноническому виду: без пробелов по краям и в верхнем регистре.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidPromoCode проверяет, что промокод непустой и состоит только из букв и цифр.
func IsValidPromoCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > maxPromoCodeLen {
		return false
	}

	for _, ch := range code {
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) {
			return false
		}
	}

	return true
}

// IsValidProductID проверяет, что идентификатор товара положительный.
func IsValidProductID(id int64) bool {
	return id > 0
}
