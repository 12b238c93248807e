// Package view хранит выбранный раздел витрины.
package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmeshcher/storefront/internal/model"
)

// ErrUnknownSection возвращается для названия раздела, которого нет на витрине.
var ErrUnknownSection = errors.New("unknown section")

// Selector хранит один из пяти разделов. Переключение безусловно.
type Selector struct {
	active model.Section
}

// NewSelector создаёт селектор с открытой главной страницей.
func NewSelector() *Selector {
	return &Selector{active: model.SectionHome}
}

// Active возвращает текущий раздел.
func (s *Selector) Active() model.Section {
	return s.active
}

// Switch делает раздел текущим.
func (s *Selector) Switch(section model.Section) error {
	if !IsKnown(section) {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	s.active = section
	return nil
}

// Parse преобразует строку в раздел витрины.
func Parse(name string) (model.Section, error) {
	section := model.Section(strings.ToLower(strings.TrimSpace(name)))
	if !IsKnown(section) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return section, nil
}

// IsKnown сообщает, существует ли раздел.
func IsKnown(section model.Section) bool {
	for _, s := range model.Sections {
		if s == section {
			return true
		}
	}
	return false
}
