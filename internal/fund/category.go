package fund

import "strings"

// categoryEntry maps a standard category name to the keywords that identify it.
type categoryEntry struct {
	standard string
	keywords []string
}

// categoryTable is scanned in order and the first keyword hit wins. Order
// matters: "Balanced" must resolve to Hybrid before any other entry gets a
// chance, and "Thematic" funds are folded into Sectoral.
var categoryTable = []categoryEntry{
	{"Large Cap", []string{"Large Cap"}},
	{"Mid Cap", []string{"Mid Cap"}},
	{"Small Cap", []string{"Small Cap"}},
	{"Multi Cap", []string{"Multi Cap"}},
	{"Flexi Cap", []string{"Flexi Cap"}},
	{"ELSS", []string{"ELSS"}},
	{"Hybrid", []string{"Hybrid", "Balanced"}},
	{"Sectoral", []string{"Sectoral", "Thematic"}},
	{"Value/Contra", []string{"Value", "Contra"}},
	{"Focused", []string{"Focused"}},
	{"Index", []string{"Index"}},
	{"Gold", []string{"Gold"}},
}

// StandardizeCategory normalizes a raw provider category string to the small
// standard taxonomy. Unknown categories pass through unchanged; an empty
// input becomes "Unknown".
func StandardizeCategory(raw string) string {
	if raw == "" {
		return "Unknown"
	}

	for _, entry := range categoryTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(raw, keyword) {
				return entry.standard
			}
		}
	}

	return raw
}
