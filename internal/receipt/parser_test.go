package receipt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemsAcceptsPricedLine(t *testing.T) {
	items := ParseItems("Margherita Pizza        14.50")

	require.Len(t, items, 1)
	assert.Equal(t, "Margherita Pizza", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("14.50")))
	assert.Equal(t, CategoryPizza, items[0].Category)
	assert.NotEmpty(t, items[0].ID)
}

func TestParseItemsRejectsNoise(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"card line with zero price", "VISA ****1234                 0.00"},
		{"totals header", "SUBTOTAL                      30.00"},
		{"grand total", "TOTAL                         33.50"},
		{"tax line", "Sales Tax                      2.48"},
		{"tip line", "Gratuity 18%                   5.40"},
		{"date line", "04/12/2025  7:42 PM"},
		{"separator run", "--------------------------------"},
		{"long digit run", "Ref 402981234455               1.00"},
		{"order marker", "Order #47                      "},
		{"phone line", "Tel: 555-0199"},
		{"url line", "www.lucianos.com"},
		{"too short", "ab"},
		{"no trailing price", "Thanks for dining with us"},
		{"price at sanity ceiling", "Catering package             500.00"},
		{"price above ceiling", "Phone misread                750.00"},
		{"name too short after cleaning", "**  4.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ParseItems(tt.line), "line %q must not yield an item", tt.line)
		})
	}
}

func TestParseItemsCleansNames(t *testing.T) {
	items := ParseItems("** Mama's Mac & Cheese !!      $11.95")

	require.Len(t, items, 1)
	assert.Equal(t, "Mama's Mac & Cheese", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("11.95")))
}

func TestParseItemsNormalizesCommaDecimal(t *testing.T) {
	items := ParseItems("Espresso  2,40")

	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("2.40")))
	assert.Equal(t, CategoryDrink, items[0].Category)
}

func TestGuessCategoryPriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"Large Coke", CategoryDrink},
		{"Pepperoni Pizza", CategoryPizza},
		{"Buffalo Wings", CategoryAppetizer},
		{"Chicken Wings", CategoryAppetizer}, // appetizer outranks entree
		{"Grilled Chicken", CategoryEntree},
		{"Mystery Special", CategoryOther},
		{"House Margarita", CategoryDrink}, // drink outranks everything
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessCategory(tt.name))
		})
	}
}

func TestParseItemsEmptyInput(t *testing.T) {
	assert.Empty(t, ParseItems(""))
	assert.Empty(t, ParseItems("\n\n  \n"))
}

func TestParseFullReceipt(t *testing.T) {
	raw := `Luciano's Pizzeria
123 Main Street
04/12/2025 7:42 PM
--------------------------------
Margherita Pizza          14.50
Garlic Bread               6.00
2 House Salad             11.00
Craft IPA                  7.25
--------------------------------
Subtotal                  38.75
Sales Tax                  3.20
Gratuity                   7.00
TOTAL                     48.95
VISA ****1234
Thank you! www.lucianos.com`

	data := Parse(raw)

	require.Len(t, data.Items, 4)
	assert.Equal(t, "Margherita Pizza", data.Items[0].Name)
	assert.Equal(t, CategoryPizza, data.Items[0].Category)
	assert.Equal(t, CategoryAppetizer, data.Items[1].Category)
	assert.Equal(t, CategoryAppetizer, data.Items[2].Category)
	assert.Equal(t, CategoryDrink, data.Items[3].Category)

	assert.True(t, data.Subtotal.Equal(decimal.RequireFromString("38.75")))
	assert.True(t, data.Tax.Equal(decimal.RequireFromString("3.20")))
	assert.True(t, data.Gratuity.Equal(decimal.RequireFromString("7.00")))
	assert.True(t, data.Total.Equal(decimal.RequireFromString("48.95")))

	require.NotNil(t, data.Restaurant)
	assert.Equal(t, "Luciano's Pizzeria", *data.Restaurant)
	require.NotNil(t, data.Date)
	assert.Equal(t, "04/12/2025", *data.Date)
}
