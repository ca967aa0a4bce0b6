// Package prompt composes the system instruction that grounds the assistant
// in the current catalog.
package prompt

import (
	"strconv"
	"strings"

	"BukuBot/internal/catalog"
)

const header = `You are the friendly sales assistant for the 2025 Book Bazaar.

CATALOG DATA:
`

const directives = `
RULES:
- Greet customers warmly and answer price questions cheerfully.
- When a customer wants to buy, collect their name, the book title, and the quantity.
- Verify stock before confirming any order.
- End every confirmed order with the exact format: [ORDER: <name> | <title> | <quantity>]
- Never alter the listed prices.
- Never promise a book that is out of stock.
- Only discuss the book bazaar and its catalog.
`

// Compose renders the system instruction for the given catalog. It is a pure
// function: identical catalogs produce byte-identical output.
func Compose(cat catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(header)
	for _, entry := range cat {
		b.WriteString("- ")
		b.WriteString(entry.Title)
		b.WriteString(" | normal price Rp ")
		b.WriteString(formatPrice(entry.NormalPrice))
		b.WriteString(" | discounted price Rp ")
		b.WriteString(formatPrice(entry.DiscountPrice))
		b.WriteString(" | stock ")
		b.WriteString(strconv.Itoa(entry.Stock))
		b.WriteString("\n")
	}
	b.WriteString(directives)
	return b.String()
}

// formatPrice renders a rupiah amount without trailing zeros, so whole
// prices come out as plain integers.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
