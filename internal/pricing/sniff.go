package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/takeoff-group/recon-cli/internal/model"
)

// relevantColumns are the header patterns worth sending to the oracle. Any
// other column is noise for matching purposes and is projected away.
var relevantColumns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)description`),
	regexp.MustCompile(`(?i)item`),
	regexp.MustCompile(`(?i)size`),
	regexp.MustCompile(`(?i)capacity`),
	regexp.MustCompile(`(?i)price`),
	regexp.MustCompile(`(?i)manhour`),
	regexp.MustCompile(`(?i)unit`),
}

// sniffColumns projects a price-list row down to its relevant columns.
// Pure; the original row is never modified.
func sniffColumns(row model.PriceListRow) model.PriceListRow {
	out := make(model.PriceListRow, len(row))
	for name, value := range row {
		for _, pattern := range relevantColumns {
			if pattern.MatchString(name) {
				out[name] = value
				break
			}
		}
	}
	return out
}

// columnValue returns the value of the first column whose lowercased name
// contains every one of the wanted tokens and none of the excluded ones.
func columnValue(row model.PriceListRow, wanted []string, excluded []string) string {
	for name, value := range row {
		lower := strings.ToLower(name)
		ok := true
		for _, w := range wanted {
			if !strings.Contains(lower, w) {
				ok = false
				break
			}
		}
		for _, x := range excluded {
			if strings.Contains(lower, x) {
				ok = false
				break
			}
		}
		if ok {
			if s, isStr := value.(string); isStr {
				return s
			}
			return valueToString(value)
		}
	}
	return ""
}

// unitPrice pulls the unit price out of a row: a "unit price" column when
// present, otherwise any price column that is not a total.
func unitPrice(row model.PriceListRow) string {
	if v := columnValue(row, []string{"unit", "price"}, nil); v != "" {
		return v
	}
	return columnValue(row, []string{"price"}, []string{"total"})
}

// unitManhour pulls the unit manhour figure out of a row, same preference
// order as unitPrice.
func unitManhour(row model.PriceListRow) string {
	if v := columnValue(row, []string{"unit", "manhour"}, nil); v != "" {
		return v
	}
	return columnValue(row, []string{"manhour"}, []string{"total"})
}

func valueToString(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	default:
		return ""
	}
}
