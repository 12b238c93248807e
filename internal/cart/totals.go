package cart

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

const (
	descriptionPrefix = "Заказ: "
	returnQuery       = "?payment=success"
)

var hundred = decimal.NewFromInt(100)

// Subtotal возвращает сумму price × quantity по всем позициям.
func Subtotal(lines []model.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount())
	}
	return sum
}

// DiscountAmount возвращает размер скидки для суммы и процента.
func DiscountAmount(subtotal decimal.Decimal, percent int) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(int64(percent))).Div(hundred)
}

// Compute рассчитывает итоги по позициям и проценту скидки.
func Compute(lines []model.CartLine, percent int) model.Totals {
	subtotal := Subtotal(lines)
	discount := DiscountAmount(subtotal, percent)
	return model.Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
		Percent:  percent,
	}
}

// Describe формирует описание заказа вида "Заказ: товар x1, товар x2".
func Describe(lines []model.CartLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Product.Name+" x"+strconv.Itoa(l.Quantity))
	}
	return descriptionPrefix + strings.Join(parts, ", ")
}

// ReturnURL формирует адрес возврата покупателя после оплаты.
func ReturnURL(origin string) string {
	return strings.TrimRight(origin, "/") + returnQuery
}

// Draft собирает черновик заказа для платёжного сервиса.
func Draft(lines []model.CartLine, percent int, origin string) model.OrderDraft {
	return model.OrderDraft{
		Description: Describe(lines),
		Amount:      Compute(lines, percent).Total,
		ReturnURL:   ReturnURL(origin),
	}
}
