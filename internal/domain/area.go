package domain

import "strings"

// Universal selection tokens. AllToken is the label shown in the area and
// category pickers; "all" is accepted for ASCII callers.
const (
	AllToken      = "すべて"
	AllTokenASCII = "all"
)

// areas lists the ten general transmission areas minus Okinawa, which HJKS does not cover.
var areas = []string{"北海道", "東北", "東京", "中部", "北陸", "関西", "中国", "四国", "九州"}

var areaAliases = map[string]string{
	"hokkaido": "北海道",
	"tohoku":   "東北",
	"tokyo":    "東京",
	"chubu":    "中部",
	"hokuriku": "北陸",
	"kansai":   "関西",
	"chugoku":  "中国",
	"shikoku":  "四国",
	"kyushu":   "九州",
}

// Areas returns the supply areas in HJKS display order.
func Areas() []string {
	out := make([]string, len(areas))
	copy(out, areas)
	return out
}

// NormalizeArea maps English aliases to the Japanese area name and trims
// whitespace. Unknown values are returned trimmed but otherwise unchanged.
func NormalizeArea(s string) string {
	s = strings.TrimSpace(s)
	if ja, ok := areaAliases[strings.ToLower(s)]; ok {
		return ja
	}
	return s
}

// IsAll reports whether s is a universal selection token.
func IsAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == AllToken || strings.EqualFold(s, AllTokenASCII)
}
