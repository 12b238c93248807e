// Package catalog содержит неизменяемый каталог товаров и таблицу промокодов.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmeshcher/storefront/internal/model"
	"github.com/mmeshcher/storefront/internal/validation"
)

var (
	// ErrDuplicateProduct возвращается, если в каталоге два товара с одним идентификатором.
	ErrDuplicateProduct = errors.New("duplicate product id")
	// ErrInvalidProduct возвращается для товара с некорректным идентификатором или ценой.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrDuplicatePromo возвращается, если промокод встречается дважды без учёта регистра.
	ErrDuplicatePromo = errors.New("duplicate promo code")
	// ErrInvalidPromo возвращается для промокода с пустым кодом или скидкой вне диапазона 0..100.
	ErrInvalidPromo = errors.New("invalid promo code")
)

// Source описывает внешний источник данных каталога.
type Source interface {
	LoadProducts(ctx context.Context) ([]model.Product, error)
	LoadPromoCodes(ctx context.Context) ([]model.PromoCode, error)
}

// Catalog хранит товары и промокоды. После создания не изменяется.
type Catalog struct {
	products []model.Product
	byID     map[int64]int
	promos   []model.PromoCode
	byCode   map[string]int
}

// New проверяет данные и создаёт каталог.
func New(products []model.Product, promos []model.PromoCode) (*Catalog, error) {
	c := &Catalog{
		products: make([]model.Product, 0, len(products)),
		byID:     make(map[int64]int, len(products)),
		promos:   make([]model.PromoCode, 0, len(promos)),
		byCode:   make(map[string]int, len(promos)),
	}

	for _, p := range products {
		if !validation.IsValidProductID(p.ID) || p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: id %d", ErrInvalidProduct, p.ID)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateProduct, p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}

	for _, p := range promos {
		key := validation.NormalizePromoCode(p.Code)
		if !validation.IsValidPromoCode(key) || p.Discount < 0 || p.Discount > 100 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPromo, p.Code)
		}
		if _, ok := c.byCode[key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePromo, p.Code)
		}
		p.Code = key
		c.byCode[key] = len(c.promos)
		c.promos = append(c.promos, p)
	}

	return c, nil
}

// Load читает товары и промокоды из источника и создаёт каталог.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	promos, err := src.LoadPromoCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load promo codes: %w", err)
	}

	return New(products, promos)
}

// Products возвращает копию списка товаров в порядке заполнения каталога.
func (c *Catalog) Products() []model.Product {
	res := make([]model.Product, len(c.products))
	for i, p := range c.products {
		res[i] = cloneProduct(p)
	}
	return res
}

// Product возвращает товар по идентификатору.
func (c *Catalog) Product(id int64) (model.Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return cloneProduct(c.products[idx]), true
}

// cloneProduct копирует товар вместе с полями-указателями.
func cloneProduct(p model.Product) model.Product {
	if p.OldPrice != nil {
		old := *p.OldPrice
		p.OldPrice = &old
	}
	if p.Discount != nil {
		discount := *p.Discount
		p.Discount = &discount
	}
	return p
}

// Promos возвращает копию таблицы промокодов.
func (c *Catalog) Promos() []model.PromoCode {
	res := make([]model.PromoCode, len(c.promos))
	copy(res, c.promos)
	return res
}

// LookupPromo ищет промокод без учёта регистра.
func (c *Catalog) LookupPromo(code string) (model.PromoCode, bool) {
	idx, ok := c.byCode[validation.NormalizePromoCode(code)]
	if !ok {
		return model.PromoCode{}, false
	}
	return c.promos[idx], true
}
