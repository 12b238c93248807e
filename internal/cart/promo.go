package cart

import (
	"errors"

	"github.com/mmeshcher/storefront/internal/model"
)

// ErrPromoNotFound возвращается, если промокод отсутствует в таблице.
var ErrPromoNotFound = errors.New("promo code not found")

// PromoTable описывает таблицу промокодов.
type PromoTable interface {
	LookupPromo(code string) (model.PromoCode, bool)
}

// Promo хранит единственный применённый промокод. Скидки не суммируются.
type Promo struct {
	table   PromoTable
	applied model.PromoCode
}

// NewPromo создаёт движок промокодов поверх таблицы.
func NewPromo(table PromoTable) *Promo {
	return &Promo{table: table}
}

// Apply применяет промокод, заменяя ранее применённый.
// При отсутствии кода возвращает ErrPromoNotFound и не меняет текущую скидку.
func (p *Promo) Apply(code string) (model.PromoCode, error) {
	promo, ok := p.table.LookupPromo(code)
	if !ok {
		return model.PromoCode{}, ErrPromoNotFound
	}
	p.applied = promo
	return promo, nil
}

// Percent возвращает процент применённой скидки или 0.
func (p *Promo) Percent() int {
	return p.applied.Discount
}

// Applied возвращает применённый промокод и признак его наличия.
func (p *Promo) Applied() (model.PromoCode, bool) {
	return p.applied, p.applied.Code != ""
}
