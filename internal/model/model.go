// Package model содержит доменные сущности витрины магазина.
package model

import "github.com/shopspring/decimal"

// Product описывает товар каталога. Товары неизменяемы и создаются при запуске.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	OldPrice *decimal.Decimal
	Discount *int
	Image    string
	Category string
}

// CartLine описывает позицию корзины: товар и выбранное количество.
type CartLine struct {
	Product  Product
	Quantity int
}

// Amount возвращает стоимость позиции с учётом количества.
func (l CartLine) Amount() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PromoCode описывает промокод и размер скидки в процентах.
type PromoCode struct {
	Code        string
	Discount    int
	Description string
}

// OrderDraft содержит данные заказа, передаваемые платёжному сервису.
type OrderDraft struct {
	Description string
	Amount      decimal.Decimal
	ReturnURL   string
}

// Totals содержит производные суммы корзины.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Percent  int
}

// Section описывает раздел витрины.
type Section string

const (
	SectionHome     Section = "home"
	SectionCatalog  Section = "catalog"
	SectionAbout    Section = "about"
	SectionDelivery Section = "delivery"
	SectionContacts Section = "contacts"
)

// Sections перечисляет все разделы витрины в порядке навигации.
var Sections = []Section{
	SectionHome,
	SectionCatalog,
	SectionAbout,
	SectionDelivery,
	SectionContacts,
}
