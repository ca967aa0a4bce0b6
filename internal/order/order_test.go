package order

import (
	"reflect"
	"testing"
)

func TestContainsMarker(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Thanks! [ORDER: Jane | Book | 1]", true},
		{"[ORDER: incomplete", true},
		{"no marker here", false},
		{"order: Jane", false},
	}

	for _, tt := range tests {
		if got := ContainsMarker(tt.text); got != tt.want {
			t.Errorf("ContainsMarker(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	got := Parse("Terima kasih! [ORDER: Jane | Sample Title | 1]")
	want := []Order{{
		Customer: "Jane",
		Title:    "Sample Title",
		Quantity: 1,
		Raw:      "[ORDER: Jane | Sample Title | 1]",
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %+v, want %+v", got, want)
	}
}

func TestParse_Multiple(t *testing.T) {
	got := Parse("[ORDER: A | X | 2] and [ORDER: B | Y | 3]")
	if len(got) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(got))
	}
	if got[0].Customer != "A" || got[1].Customer != "B" {
		t.Errorf("orders out of appearance order: %+v", got)
	}
}

func TestParse_NonNumericQuantity(t *testing.T) {
	got := Parse("[ORDER: Jane | Book | dua]")
	if len(got) != 1 {
		t.Fatalf("expected 1 order, got %d", len(got))
	}
	if got[0].Quantity != 0 {
		t.Errorf("expected quantity 0 for non-numeric field, got %d", got[0].Quantity)
	}
	if got[0].Raw != "[ORDER: Jane | Book | dua]" {
		t.Errorf("raw marker not preserved: %q", got[0].Raw)
	}
}

func TestParse_NoMarker(t *testing.T) {
	if got := Parse("just a chat message"); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
