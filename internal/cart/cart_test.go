package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/storefront/internal/model"
)

func testProduct(id int64, name string, price int64) model.Product {
	return model.Product{ID: id, Name: name, Price: decimal.NewFromInt(price)}
}

var (
	phone      = testProduct(1, "Смартфон Galaxy X", 45990)
	headphones = testProduct(2, "Наушники Pro Max", 12990)
	watch      = testProduct(3, "Умные часы Sport", 8990)
	freebie    = testProduct(99, "Подарок", 0)
)

func TestAdd_IncrementsExistingLine(t *testing.T) {
	c := New()
	require.True(t, c.IsEmpty())

	c.Add(phone)
	c.Add(headphones)
	c.Add(headphones)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, phone.ID, lines[0].Product.ID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, headphones.ID, lines[1].Product.ID)
	assert.Equal(t, 2, lines[1].Quantity)
}

func TestRemove(t *testing.T) {
	c := New()
	c.Add(phone)
	c.Add(watch)

	c.Remove(42)
	assert.Equal(t, 2, c.Len())

	c.Remove(phone.ID)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, watch.ID, lines[0].Product.ID)

	c.Remove(watch.ID)
	assert.True(t, c.IsEmpty())
}

func TestSetQuantity(t *testing.T) {
	c := New()
	c.Add(phone)

	c.SetQuantity(phone.ID, 5)
	require.Equal(t, 5, c.Lines()[0].Quantity)

	c.SetQuantity(headphones.ID, 3)
	assert.Equal(t, 1, c.Len(), "SetQuantity must not create lines")

	c.SetQuantity(phone.ID, 0)
	assert.True(t, c.IsEmpty())

	c.Add(phone)
	c.SetQuantity(phone.ID, -2)
	assert.True(t, c.IsEmpty())
}

func TestSubtotal(t *testing.T) {
	c := New()
	assert.True(t, c.Subtotal().IsZero())

	c.Add(phone)
	c.Add(headphones)
	c.Add(headphones)
	assert.True(t, c.Subtotal().Equal(decimal.NewFromInt(71970)), "got %s", c.Subtotal())

	c.Add(freebie)
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.Subtotal().Equal(decimal.NewFromInt(71970)), "zero-price product must not change subtotal")
}

func TestLinesReturnsCopy(t *testing.T) {
	c := New()
	c.Add(phone)

	lines := c.Lines()
	lines[0].Quantity = 100

	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	products := []model.Product{phone, headphones, watch, freebie}
	rnd := rand.New(rand.NewSource(1))

	for run := 0; run < 50; run++ {
		c := New()
		expected := map[int64]int{}

		for step := 0; step < 200; step++ {
			p := products[rnd.Intn(len(products))]
			switch rnd.Intn(3) {
			case 0:
				c.Add(p)
				expected[p.ID]++
			case 1:
				c.Remove(p.ID)
				delete(expected, p.ID)
			case 2:
				q := rnd.Intn(6) - 2
				c.SetQuantity(p.ID, q)
				if q <= 0 {
					delete(expected, p.ID)
				} else if _, ok := expected[p.ID]; ok {
					expected[p.ID] = q
				}
			}

			seen := map[int64]bool{}
			want := decimal.Zero
			for _, l := range c.Lines() {
				require.False(t, seen[l.Product.ID], "duplicate line for product %d", l.Product.ID)
				seen[l.Product.ID] = true
				require.GreaterOrEqual(t, l.Quantity, 1)
				require.Equal(t, expected[l.Product.ID], l.Quantity)
				want = want.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
			require.Len(t, seen, len(expected))
			require.True(t, c.Subtotal().Equal(want))
		}
	}
}
