// Package cart реализует корзину покупателя, применение промокодов и расчёт итогов.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

// Cart хранит позиции в порядке первого добавления товара.
// Не потокобезопасен: доступ сериализуется владельцем корзины.
type Cart struct {
	lines []model.CartLine
}

// New создаёт пустую корзину.
func New() *Cart {
	return &Cart{}
}

// Add увеличивает количество товара на единицу или добавляет новую позицию.
func (c *Cart) Add(p model.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, model.CartLine{Product: p, Quantity: 1})
}

// Remove удаляет позицию товара. Отсутствие позиции не считается ошибкой.
func (c *Cart) Remove(productID int64) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// SetQuantity задаёт количество для существующей позиции.
// Неположительное количество удаляет позицию; новые позиции не создаются.
func (c *Cart) SetQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

// Lines возвращает копию позиций корзины.
func (c *Cart) Lines() []model.CartLine {
	res := make([]model.CartLine, len(c.lines))
	copy(res, c.lines)
	return res
}

// Len возвращает количество позиций.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty сообщает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Subtotal возвращает сумму корзины без скидки.
func (c *Cart) Subtotal() decimal.Decimal {
	return Subtotal(c.lines)
}

func (c *Cart) index(productID int64) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
