// Package rab holds the line-item ledger of a construction estimate, its
// totals, and the SQLite store that persists estimates.
package rab

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/rab.works/internal/catalog"
	"github.com/Simplici0/rab.works/internal/pricing"
)

// LineItem is one priced row of an estimate. UnitPrice and Amount are fixed
// when the item is added.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Unit        string  `json:"unit"`
	Volume      float64 `json:"volume"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// NewItem is the input for AddItem. A zero UnitPrice asks for auto-pricing
// from SubCategory.
type NewItem struct {
	Description string
	Category    string
	SubCategory string
	Unit        string
	Volume      float64
	UnitPrice   float64
}

type ErrorKind string

const (
	MissingField     ErrorKind = "missing_field"
	InvalidVolume    ErrorKind = "invalid_volume"
	InvalidUnitPrice ErrorKind = "invalid_unit_price"
)

// ValidationError rejects a line item before it reaches the ledger.
type ValidationError struct {
	Kind    ErrorKind
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Ledger is an ordered list of line items.
type Ledger struct {
	items []LineItem
}

// NewLedger rebuilds a ledger from stored items, keeping their order.
func NewLedger(items ...LineItem) *Ledger {
	l := &Ledger{items: make([]LineItem, len(items))}
	copy(l.items, items)
	return l
}

// AddItem validates in, resolves its unit price when none was given and
// appends the item. The ledger is unchanged on error.
func (l *Ledger) AddItem(in NewItem, src catalog.Source) (LineItem, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.SubCategory = strings.TrimSpace(in.SubCategory)
	in.Unit = strings.TrimSpace(in.Unit)

	if err := validate(in); err != nil {
		return LineItem{}, err
	}

	price := in.UnitPrice
	if price == 0 {
		price = pricing.ResolveAutoPrice(in.SubCategory, src)
	}

	item := LineItem{
		ID:          uuid.NewString(),
		Description: in.Description,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		Unit:        in.Unit,
		Volume:      in.Volume,
		UnitPrice:   price,
		Amount:      in.Volume * price,
	}
	l.items = append(l.items, item)
	return item, nil
}

// CheckRequired reports a MissingField error when description, category or
// unit is blank. It runs before any numeric check.
func CheckRequired(in NewItem) error {
	var missing []string
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if in.Category == "" {
		missing = append(missing, "category")
	}
	if in.Unit == "" {
		missing = append(missing, "unit")
	}
	if len(missing) > 0 {
		return &ValidationError{
			Kind:    MissingField,
			Fields:  missing,
			Message: "missing required fields: " + strings.Join(missing, ", "),
		}
	}
	return nil
}

func validate(in NewItem) error {
	if err := CheckRequired(in); err != nil {
		return err
	}

	if math.IsNaN(in.Volume) || math.IsInf(in.Volume, 0) || in.Volume <= 0 {
		return &ValidationError{
			Kind:    InvalidVolume,
			Fields:  []string{"volume"},
			Message: "volume must be a number greater than zero",
		}
	}

	if math.IsNaN(in.UnitPrice) || math.IsInf(in.UnitPrice, 0) || in.UnitPrice < 0 {
		return &ValidationError{
			Kind:    InvalidUnitPrice,
			Fields:  []string{"unit_price"},
			Message: "unit price must be zero or a positive number",
		}
	}
	return nil
}

// RemoveItem drops the item with id. It reports whether anything was removed.
func (l *Ledger) RemoveItem(id string) bool {
	for i, item := range l.items {
		if item.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the items in insertion order.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Ledger) Len() int {
	return len(l.items)
}

func (l *Ledger) Totals() Totals {
	return ComputeTotals(l.items)
}

// ParseVolume reads a form volume. Both "12.5" and "12,5" are accepted.
func ParseVolume(raw string) (float64, error) {
	v, err := parseDecimal(raw)
	if err != nil || v <= 0 {
		return 0, &ValidationError{
			Kind:    InvalidVolume,
			Fields:  []string{"volume"},
			Message: fmt.Sprintf("volume %q must be a number greater than zero", strings.TrimSpace(raw)),
		}
	}
	return v, nil
}

// ParseUnitPrice reads a form unit price. A blank value is 0, which selects auto-pricing.
func ParseUnitPrice(raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	v, err := parseDecimal(raw)
	if err != nil || v < 0 {
		return 0, &ValidationError{
			Kind:    InvalidUnitPrice,
			Fields:  []string{"unit_price"},
			Message: fmt.Sprintf("unit price %q must be zero or a positive number", strings.TrimSpace(raw)),
		}
	}
	return v, nil
}

func parseDecimal(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse decimal %q: not finite", raw)
	}
	return v, nil
}
