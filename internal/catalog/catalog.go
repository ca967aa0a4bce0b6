// Package catalog loads and caches the book table that grounds every
// assistant reply.
//
// The source is a CSV file with a header row. Header names are trimmed and
// matched case-insensitively against the Indonesian column names of the
// bazaar spreadsheet and their English equivalents. The loaded catalog is
// immutable; a reload discards it and reads the file again.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Canonical column names, in required order.
const (
	FieldTitle         = "Judul Buku"
	FieldNormalPrice   = "Harga Normal"
	FieldDiscountPrice = "Harga Diskon"
	FieldStock         = "Stock"
)

var (
	// ErrNotFound indicates the catalog source file does not exist.
	ErrNotFound = errors.New("catalog source not found")
	// ErrEmpty indicates the catalog source contains no data rows.
	ErrEmpty = errors.New("catalog source has no rows")
)

// MissingFieldsError reports which required columns are absent from the
// header row.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "catalog header missing required fields: " + strings.Join(e.Fields, ", ")
}

// Entry is one book in the catalog.
type Entry struct {
	Title         string  `json:"title"`
	NormalPrice   float64 `json:"normal_price"`
	DiscountPrice float64 `json:"discount_price"`
	Stock         int     `json:"stock"`
}

// Catalog is the ordered book table, in source-file order.
type Catalog []Entry

// fieldAliases maps normalized header names to canonical field names.
var fieldAliases = map[string]string{
	"judul buku":       FieldTitle,
	"judul":            FieldTitle,
	"title":            FieldTitle,
	"harga normal":     FieldNormalPrice,
	"normal price":     FieldNormalPrice,
	"harga diskon":     FieldDiscountPrice,
	"discount price":   FieldDiscountPrice,
	"discounted price": FieldDiscountPrice,
	"stock":            FieldStock,
	"stok":             FieldStock,
}

// Load reads the CSV file at path into a Catalog. restockBonus is added to
// every stock value after parsing; the adjustment is in-memory only and is
// discarded on reload.
func Load(path string, restockBonus int) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	cols, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	rows := records[1:]
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	cat := make(Catalog, 0, len(rows))
	for i, row := range rows {
		entry, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: %w", i+1, err)
		}
		entry.Stock += restockBonus
		cat = append(cat, entry)
	}
	return cat, nil
}

// mapHeader resolves the header row to column indexes for the four required
// fields. Header cells are trimmed before matching.
func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := fieldAliases[normalized]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}

	var missing []string
	for _, field := range []string{FieldTitle, FieldNormalPrice, FieldDiscountPrice, FieldStock} {
		if _, ok := cols[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (Entry, error) {
	var entry Entry

	title, err := cell(row, cols[FieldTitle])
	if err != nil {
		return entry, err
	}
	entry.Title = strings.TrimSpace(title)
	if entry.Title == "" {
		return entry, fmt.Errorf("empty %s", FieldTitle)
	}

	entry.NormalPrice, err = priceCell(row, cols[FieldNormalPrice], FieldNormalPrice)
	if err != nil {
		return entry, err
	}
	entry.DiscountPrice, err = priceCell(row, cols[FieldDiscountPrice], FieldDiscountPrice)
	if err != nil {
		return entry, err
	}

	raw, err := cell(row, cols[FieldStock])
	if err != nil {
		return entry, err
	}
	entry.Stock, err = strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return entry, fmt.Errorf("invalid %s value %q", FieldStock, raw)
	}
	if entry.Stock < 0 {
		return entry, fmt.Errorf("negative %s value %d", FieldStock, entry.Stock)
	}
	return entry, nil
}

func cell(row []string, idx int) (string, error) {
	if idx >= len(row) {
		return "", fmt.Errorf("row has %d columns, need at least %d", len(row), idx+1)
	}
	return row[idx], nil
}

func priceCell(row []string, idx int, field string) (float64, error) {
	raw, err := cell(row, idx)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", field, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative %s value %g", field, v)
	}
	return v, nil
}

// Store memoizes a loaded catalog and hands out the cached copy until it is
// explicitly invalidated by Reload.
type Store struct {
	path  string
	bonus int

	mu     sync.RWMutex
	cached Catalog
}

// NewStore creates a store for the catalog at path. Nothing is read until
// the first Get.
func NewStore(path string, restockBonus int) *Store {
	return &Store{path: path, bonus: restockBonus}
}

// Get returns the cached catalog, loading it on first use.
func (s *Store) Get() (Catalog, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return s.Reload()
}

// Reload discards the cached catalog and reads the source file again.
func (s *Store) Reload() (Catalog, error) {
	cat, err := Load(s.path, s.bonus)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cached = cat
	s.mu.Unlock()
	return cat, nil
}
