package pricing

import "strings"

// WorkCategory groups sub-category labels for the item picker.
type WorkCategory struct {
	Name          string   `json:"name"`
	SubCategories []string `json:"sub_categories"`
}

// Categories returns the work categories in display order with their labels.
func Categories() []WorkCategory {
	var out []WorkCategory
	for _, e := range entries {
		if len(out) == 0 || out[len(out)-1].Name != e.Category {
			out = append(out, WorkCategory{Name: e.Category})
		}
		last := &out[len(out)-1]
		last.SubCategories = append(last.SubCategories, e.SubCategory)
	}
	return out
}

// CategoryOf returns the category a label belongs to, or "" if unknown.
func CategoryOf(label string) string {
	return categoryOf[strings.TrimSpace(label)]
}

// UnitOf returns the unit written in the trailing parentheses of a label.
func UnitOf(label string) string {
	label = strings.TrimSpace(label)
	open := strings.LastIndex(label, "(")
	if open < 0 || !strings.HasSuffix(label, ")") || open > len(label)-2 {
		return ""
	}
	return strings.TrimSpace(label[open+1 : len(label)-1])
}
