package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/storefront/internal/model"
)

// DefaultProducts возвращает встроенный набор товаров витрины.
func DefaultProducts() []model.Product {
	return []model.Product{
		product(1, "Смартфон Galaxy X", 45990, 59990, 23, "📱"),
		product(2, "Наушники Pro Max", 12990, 16990, 23, "🎧"),
		product(3, "Умные часы Sport", 8990, 12990, 31, "⌚"),
		product(4, "Ноутбук UltraBook", 89990, 109990, 18, "💻"),
		product(5, "Планшет Tab Pro", 34990, 44990, 22, "📲"),
		product(6, "Камера Zoom 4K", 24990, 32990, 24, "📷"),
	}
}

// DefaultPromoCodes возвращает встроенную таблицу промокодов.
// Минимальная сумма заказа не проверяется, поэтому в описаниях её нет.
func DefaultPromoCodes() []model.PromoCode {
	return []model.PromoCode{
		{Code: "SAVE10", Discount: 10, Description: "Скидка 10% на всё"},
		{Code: "FIRST15", Discount: 15, Description: "Скидка 15% на первый заказ"},
		{Code: "MEGA20", Discount: 20, Description: "Скидка 20% на весь заказ"},
	}
}

// Default возвращает каталог со встроенными данными.
func Default() *Catalog {
	c, err := New(DefaultProducts(), DefaultPromoCodes())
	if err != nil {
		panic(err)
	}
	return c
}

func product(id int64, name string, price, oldPrice int64, discount int, image string) model.Product {
	old := decimal.NewFromInt(oldPrice)
	return model.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromInt(price),
		OldPrice: &old,
		Discount: &discount,
		Image:    image,
		Category: "electronics",
	}
}
