// Package order detects the structured order marker the assistant emits at
// the end of a confirmed purchase.
package order

import (
	"regexp"
	"strconv"
	"strings"
)

// MarkerPrefix is the literal that flags an assistant reply as containing an
// order.
const MarkerPrefix = "[ORDER:"

var markerRe = regexp.MustCompile(`\[ORDER:\s*([^|\]]+?)\s*\|\s*([^|\]]+?)\s*\|\s*([^\]]+?)\s*\]`)

// Order is one parsed marker of the form [ORDER: name | title | quantity].
type Order struct {
	Customer string `json:"customer"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Raw      string `json:"raw"`
}

// ContainsMarker reports whether text carries the order marker prefix.
func ContainsMarker(text string) bool {
	return strings.Contains(text, MarkerPrefix)
}

// Parse extracts every well-formed marker from text, in order of appearance.
// A non-numeric quantity field parses as zero; the raw marker is preserved
// either way.
func Parse(text string) []Order {
	matches := markerRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	orders := make([]Order, 0, len(matches))
	for _, m := range matches {
		qty, _ := strconv.Atoi(strings.TrimSpace(m[3]))
		orders = append(orders, Order{
			Customer: strings.TrimSpace(m[1]),
			Title:    strings.TrimSpace(m[2]),
			Quantity: qty,
			Raw:      m[0],
		})
	}
	return orders
}
