package receipt

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The parser is a rule table, not control flow: reject rules only ever drop
// lines, so their order is irrelevant and each one is testable on its own.
// This is a lossy heuristic; output always goes through human review before
// any amount is committed.

type rejectRule struct {
	name string
	re   *regexp.Regexp
}

var rejectRules = []rejectRule{
	{"totals_header", regexp.MustCompile(`(?i)\b(sub\s?-?\s?total|total|tax|gst|vat|tip|gratuity|service\s+charge|amount\s+due|balance|change)\b`)},
	{"payment_method", regexp.MustCompile(`(?i)\b(visa|master\s?card|amex|american\s+express|discover|debit|credit|card|cash|tender|payment|auth|approval|approved)\b`)},
	{"date_token", regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`)},
	{"separator_run", regexp.MustCompile(`^[\s\-=_*~.#]+$`)},
	{"long_digit_run", regexp.MustCompile(`\d{7,}`)},
	{"order_marker", regexp.MustCompile(`(?i)\b(order|check|chk|invoice|receipt|table|tbl|server|cashier|register|terminal|merchant)\b`)},
	{"contact_info", regexp.MustCompile(`(?i)(\btel\b|phone|fax|www\.|https?://|\.com\b|\.net\b|@)`)},
}

// pricePattern matches an optional currency marker and a decimal amount
// anchored at the end of the line. Comma decimals are normalized later.
var pricePattern = regexp.MustCompile(`(?:[$€£]\s*)?([0-9]+[.,][0-9]{1,2})\s*$`)

// nameCleanPattern strips everything except letters, digits, whitespace,
// hyphens, apostrophes and ampersands.
var (
	nameCleanPattern = regexp.MustCompile(`[^A-Za-z0-9\s\-'&]+`)
	spaceRun         = regexp.MustCompile(`\s+`)
)

// maxItemPrice is a sanity ceiling: trailing numbers at or above it are far
// more likely misread totals or phone fragments than a single line item.
var maxItemPrice = decimal.NewFromInt(500)

const maxNameLength = 50

// categoryKeywords are checked in fixed priority order; first match wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryDrink, []string{
		"soda", "cola", "coke", "pepsi", "sprite", "fanta", "root beer",
		"beer", "ale", "ipa", "lager", "stout", "cider", "wine", "sangria",
		"margarita", "mojito", "cocktail", "juice", "lemonade", "iced tea",
		"coffee", "latte", "espresso", "cappuccino", "mocha", "tea",
		"water", "smoothie", "milkshake", "shake", "drink",
	}},
	{CategoryPizza, []string{
		"pizza", "calzone", "margherita", "pepperoni", "stromboli",
		"flatbread", "neapolitan", "sicilian",
	}},
	{CategoryAppetizer, []string{
		"appetizer", "starter", "wings", "fries", "onion rings", "nachos",
		"salad", "soup", "breadstick", "garlic bread", "bruschetta",
		"hummus", "mozzarella sticks", "edamame", "spring roll", "dumpling",
		"side",
	}},
	{CategoryEntree, []string{
		"burger", "sandwich", "pasta", "spaghetti", "lasagna", "risotto",
		"steak", "chicken", "fish", "salmon", "shrimp", "taco", "burrito",
		"ramen", "curry", "rice", "noodle", "wrap", "kebab", "gyro",
		"entree", "platter", "bowl",
	}},
}

// GuessCategory assigns a category by case-insensitive keyword match
func GuessCategory(name string) Category {
	lower := strings.ToLower(name)
	for _, set := range categoryKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.category
			}
		}
	}
	return CategoryOther
}

// rejected reports whether any reject rule matches the line
func rejected(line string) bool {
	for _, rule := range rejectRules {
		if rule.re.MatchString(line) {
			return true
		}
	}
	return false
}

// cleanName normalizes the text left of the price into an item name
func cleanName(raw string) string {
	name := nameCleanPattern.ReplaceAllString(raw, " ")
	name = spaceRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
		name = strings.TrimSpace(name)
	}
	return name
}

// parsePrice extracts a trailing price from a line. Returns ok=false when no
// trailing decimal is present or the value is outside the sanity window.
func parsePrice(line string) (price decimal.Decimal, nameStart int, ok bool) {
	loc := pricePattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return decimal.Zero, 0, false
	}

	raw := strings.ReplaceAll(line[loc[2]:loc[3]], ",", ".")
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, 0, false
	}
	if !price.IsPositive() || price.GreaterThanOrEqual(maxItemPrice) {
		return decimal.Zero, 0, false
	}

	return price, loc[0], true
}

// ParseItems converts raw multi-line OCR text into draft line items. It
// never fails: unusable input yields an empty slice and the caller falls
// back to manual entry.
func ParseItems(raw string) []Item {
	var items []Item
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}
		if rejected(line) {
			continue
		}

		price, nameStart, ok := parsePrice(line)
		if !ok {
			continue
		}

		name := cleanName(line[:nameStart])
		if utf8.RuneCountInString(name) <= 1 {
			continue
		}

		items = append(items, Item{
			ID:       uuid.NewString(),
			Name:     name,
			Price:    price,
			Category: GuessCategory(name),
		})
	}
	return items
}

// headerAmount patterns pull the charge summary out of lines the item pass
// rejects. Subtotal must be matched before total.
var headerAmounts = []struct {
	field string
	re    *regexp.Regexp
}{
	{"subtotal", regexp.MustCompile(`(?i)\bsub\s?-?\s?total\b`)},
	{"tax", regexp.MustCompile(`(?i)\b(tax|gst|vat)\b`)},
	{"gratuity", regexp.MustCompile(`(?i)\b(tip|gratuity|service\s+charge)\b`)},
	{"total", regexp.MustCompile(`(?i)\b(total|amount\s+due)\b`)},
}

var (
	trailingAmount = regexp.MustCompile(`(?:[$€£]\s*)?([0-9]+[.,][0-9]{1,2})\s*$`)
	dateToken      = regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`)
)

// Parse runs the full receipt heuristic: line items plus the charge summary
// and a restaurant/date guess from the header lines.
func Parse(raw string) *Data {
	data := &Data{Items: ParseItems(raw)}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}

		// First line with no price and no rejection is usually the
		// restaurant name.
		if data.Restaurant == nil && i < 3 && !rejected(line) {
			if _, _, hasPrice := parsePrice(line); !hasPrice {
				if name := cleanName(line); utf8.RuneCountInString(name) > 1 {
					data.Restaurant = &name
				}
				continue
			}
		}

		if data.Date == nil {
			if m := dateToken.FindString(line); m != "" {
				data.Date = &m
			}
		}

		loc := trailingAmount.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(line[loc[2]:loc[3]], ",", "."))
		if err != nil {
			continue
		}

		for _, h := range headerAmounts {
			if !h.re.MatchString(line) {
				continue
			}
			switch h.field {
			case "subtotal":
				if data.Subtotal.IsZero() {
					data.Subtotal = amount
				}
			case "tax":
				if data.Tax.IsZero() {
					data.Tax = amount
				}
			case "gratuity":
				if data.Gratuity.IsZero() {
					data.Gratuity = amount
				}
			case "total":
				// Keep the largest candidate so "total" lines beat
				// "total tax" style fragments.
				if amount.GreaterThan(data.Total) {
					data.Total = amount
				}
			}
			break
		}
	}

	return data
}
