package receipt

import (
	"github.com/shopspring/decimal"
)

// Category is a coarse guess at what kind of line item this is
type Category string

const (
	CategoryDrink     Category = "drink"
	CategoryAppetizer Category = "appetizer"
	CategoryPizza     Category = "pizza"
	CategoryEntree    Category = "entree"
	CategoryOther     Category = "other"
)

// Item is a single priced line from a receipt. Parser output is a draft:
// ids are synthetic and everything stays editable until the expense is
// created, at which point the items freeze into the expense record.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category Category        `json:"category"`
}

// Data is the parsed view of a whole receipt. Zero-value amounts mean the
// parser found no matching header line; Items may be empty, which callers
// must treat as "no items detected" and fall back to manual entry.
type Data struct {
	Restaurant *string         `json:"restaurant,omitempty"`
	Date       *string         `json:"date,omitempty"`
	Items      []Item          `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Gratuity   decimal.Decimal `json:"gratuity"`
	Total      decimal.Decimal `json:"total"`
}
