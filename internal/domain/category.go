package domain

import "strings"

// Category is a canonical generation-type label.
type Category string

const (
	Nuclear     Category = "Nuclear"
	Hydro       Category = "Hydro"
	ThermalCoal Category = "Thermal (Coal)"
	ThermalGas  Category = "Thermal (Gas)"
	ThermalOil  Category = "Thermal (Oil)"
	Geothermal  Category = "Geothermal"
	Wind        Category = "Wind"
	Solar       Category = "Solar"
	Other       Category = "Other"
)

// stackingOrder is bottom layer first.
var stackingOrder = []Category{
	Nuclear, Hydro, ThermalCoal, ThermalGas, ThermalOil, Geothermal, Wind, Solar, Other,
}

// rawToCategory must stay total over the HJKS "format" values.
var rawToCategory = map[string]Category{
	"原子力":     Nuclear,
	"水力":      Hydro,
	"火力（石炭）":  ThermalCoal,
	"火力（ガス）":  ThermalGas,
	"火力（石油）":  ThermalOil,
	"地熱":      Geothermal,
	"風力":      Wind,
	"太陽光・太陽熱": Solar,
	"その他":     Other,
}

var (
	categoryToRaw = invert(rawToCategory)
	categoryRank  = rankOf(stackingOrder)
)

// StackingOrder returns the canonical categories, bottom layer first.
func StackingOrder() []Category {
	out := make([]Category, len(stackingOrder))
	copy(out, stackingOrder)
	return out
}

// RawCategories returns the HJKS generation-type identifiers in stacking order.
func RawCategories() []string {
	out := make([]string, len(stackingOrder))
	for i, c := range stackingOrder {
		out[i] = categoryToRaw[c]
	}
	return out
}

// Translate maps a raw HJKS generation type to its canonical label.
// The second result is false for values outside the known set.
func Translate(raw string) (Category, bool) {
	c, ok := rawToCategory[strings.TrimSpace(raw)]
	return c, ok
}

// RawIdentifier maps a canonical label back to its HJKS identifier.
func RawIdentifier(c Category) (string, bool) {
	raw, ok := categoryToRaw[c]
	return raw, ok
}

// ParseCategory resolves either a raw identifier or a canonical label
// (case-insensitive) to a Category.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if c, ok := rawToCategory[s]; ok {
		return c, true
	}
	for _, c := range stackingOrder {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Rank returns the stacking position of c, or -1 if c is not canonical.
func Rank(c Category) int {
	if r, ok := categoryRank[c]; ok {
		return r
	}
	return -1
}

// LegendOrder returns cats reversed so the legend reads top layer first.
func LegendOrder(cats []Category) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[len(cats)-1-i] = c
	}
	return out
}

func invert(m map[string]Category) map[Category]string {
	out := make(map[Category]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func rankOf(order []Category) map[Category]int {
	out := make(map[Category]int, len(order))
	for i, c := range order {
		out[c] = i
	}
	return out
}
