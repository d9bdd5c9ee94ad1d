// Package pricing holds the work-item taxonomy and the formula table that
// turns a sub-category label into a unit price from the current rate catalogs.
package pricing

import (
	"strings"

	"github.com/Simplici0/rab.works/internal/catalog"
)

// TermKind selects which catalog a term is looked up in.
type TermKind string

const (
	MaterialTerm TermKind = "material"
	LaborTerm    TermKind = "labor"
)

// Term is one ingredient of a formula: Coefficient units of whatever the
// catalog offers for Keyword, or of Fallback when nothing active matches.
type Term struct {
	Kind        TermKind
	Keyword     string
	Coefficient float64
	Fallback    float64
}

// Formula prices one unit of work as Fixed plus the sum of its terms.
type Formula struct {
	Fixed float64
	Terms []Term
}

// Entry places a formula under its category and sub-category label.
type Entry struct {
	Category    string
	SubCategory string
	Formula     Formula
}

// Table maps every sub-category label to its formula.
var Table = buildTable(entries)

var categoryOf = buildCategoryIndex(entries)

func buildTable(list []Entry) map[string]Formula {
	table := make(map[string]Formula, len(list))
	for _, e := range list {
		table[e.SubCategory] = e.Formula
	}
	return table
}

func buildCategoryIndex(list []Entry) map[string]string {
	index := make(map[string]string, len(list))
	for _, e := range list {
		index[e.SubCategory] = e.Category
	}
	return index
}

// TermResult is a term evaluated against a catalog.
type TermResult struct {
	Term
	MatchedName  string
	UnitPrice    float64
	UsedFallback bool
	Amount       float64
}

// Explanation is the full breakdown of an auto-priced sub-category.
type Explanation struct {
	Category    string
	SubCategory string
	Unit        string
	Fixed       float64
	Terms       []TermResult
	Price       float64
}

// ResolveAutoPrice returns the unit price of a sub-category label computed
// from the active rows of src. Unknown labels resolve to 0.
func ResolveAutoPrice(label string, src catalog.Source) float64 {
	exp, ok := Explain(label, src)
	if !ok {
		return 0
	}
	return exp.Price
}

// Explain evaluates the formula for label term by term. The bool is false
// when label has no formula.
func Explain(label string, src catalog.Source) (Explanation, bool) {
	label = strings.TrimSpace(label)
	formula, ok := Table[label]
	if !ok {
		return Explanation{}, false
	}

	var materials []catalog.MaterialRate
	var labor []catalog.LaborRate
	if src != nil {
		materials = src.ActiveMaterials()
		labor = src.ActiveLaborRates()
	}

	exp := Explanation{
		Category:    categoryOf[label],
		SubCategory: label,
		Unit:        UnitOf(label),
		Fixed:       formula.Fixed,
		Terms:       make([]TermResult, 0, len(formula.Terms)),
		Price:       formula.Fixed,
	}
	for _, term := range formula.Terms {
		res := TermResult{Term: term, UnitPrice: term.Fallback, UsedFallback: true}
		switch term.Kind {
		case MaterialTerm:
			if m, found := catalog.FindFirstActiveMatch(materials, term.Keyword); found {
				res.MatchedName = m.Name
				res.UnitPrice = float64(m.UnitPrice)
				res.UsedFallback = false
			}
		case LaborTerm:
			if l, found := catalog.FindFirstActiveMatch(labor, term.Keyword); found {
				res.MatchedName = l.JobType
				res.UnitPrice = float64(l.UnitPrice)
				res.UsedFallback = false
			}
		}
		res.Amount = term.Coefficient * res.UnitPrice
		exp.Price += res.Amount
		exp.Terms = append(exp.Terms, res)
	}
	return exp, true
}

// Explanations evaluates every formula in display order.
func Explanations(src catalog.Source) []Explanation {
	out := make([]Explanation, 0, len(entries))
	for _, e := range entries {
		if exp, ok := Explain(e.SubCategory, src); ok {
			out = append(out, exp)
		}
	}
	return out
}
