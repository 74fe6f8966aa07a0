// Package units converts free-text size expressions to a canonical
// millimeter form and classifies line items into a fixed engineering
// taxonomy. Everything here is pure and synchronous; the engines call into
// it before talking to the oracle.
package units

import (
	"regexp"
	"strconv"
	"strings"
)

// nominalPipeSizes maps nominal pipe sizes in inches to millimeters.
var nominalPipeSizes = []struct {
	Inches float64
	MM     int
}{
	{0.5, 15},
	{0.75, 20},
	{1, 25},
	{1.25, 32},
	{1.5, 40},
	{2, 50},
	{2.5, 65},
	{3, 80},
	{4, 100},
	{5, 125},
	{6, 150},
	{8, 200},
	{10, 250},
	{12, 300},
}

var (
	mmPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*mm`)
	dnPattern   = regexp.MustCompile(`(?i)\bdn\s*(\d+(?:\.\d+)?)`)
	inchPattern = regexp.MustCompile(`(?i)([\d\s/.¼½¾-]+?)\s*(?:"|”|''|inches|inch|in\b)`)
	barePattern = regexp.MustCompile(`^[\d\s/.¼½¾-]+$`)
)

// unicodeFractions maps vulgar fraction runes to their decimal value.
var unicodeFractions = map[rune]float64{
	'¼': 0.25,
	'½': 0.5,
	'¾': 0.75,
}

// NormalizeSize converts a free-text size expression to a canonical
// millimeter form ("80mm"). It recognizes explicit mm tokens, inch-marked
// expressions (3", Ø3", DN3, 3 inch, 3in, ½", 1 1/2"), and bare numerics
// matched against the nominal pipe size table. Unrecognized input is
// returned unchanged; the function is total and idempotent over its own
// outputs.
func NormalizeSize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// Already metric: canonicalize the first mm token.
	if m := mmPattern.FindStringSubmatch(s); m != nil {
		return trimNumber(m[1]) + "mm"
	}

	// DN designations use the same nominal table.
	if m := dnPattern.FindStringSubmatch(s); m != nil {
		if mm, ok := lookupInches(m[1]); ok {
			return mm
		}
	}

	// Inch-marked expressions, with or without a Ø prefix.
	stripped := strings.TrimPrefix(strings.TrimPrefix(s, "Ø"), "ø")
	if m := inchPattern.FindStringSubmatch(stripped); m != nil {
		if mm, ok := lookupInches(m[1]); ok {
			return mm
		}
	}

	// Bare numeric (or fraction) string.
	if barePattern.MatchString(stripped) {
		if mm, ok := lookupInches(stripped); ok {
			return mm
		}
	}

	return raw
}

// lookupInches parses an inch expression (decimal, vulgar fraction, ASCII
// fraction, or mixed number) and resolves it through the nominal table.
func lookupInches(expr string) (string, bool) {
	val, ok := parseInches(expr)
	if !ok {
		return "", false
	}
	for _, n := range nominalPipeSizes {
		if abs(n.Inches-val) < 1e-9 {
			return strconv.Itoa(n.MM) + "mm", true
		}
	}
	return "", false
}

// parseInches handles "3", "2.5", "½", "1½", "1/2", "1 1/2", "1-1/2".
func parseInches(expr string) (float64, bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, false
	}

	// Unicode fraction, possibly preceded by a whole part ("1½").
	var fracPart float64
	runes := []rune(expr)
	if v, ok := unicodeFractions[runes[len(runes)-1]]; ok {
		fracPart = v
		expr = strings.TrimSpace(string(runes[:len(runes)-1]))
		if expr == "" {
			return fracPart, true
		}
	}

	// ASCII fraction with optional whole part ("1/2", "1 1/2", "1-1/2").
	if strings.Contains(expr, "/") {
		whole := 0.0
		frac := expr
		if fields := strings.FieldsFunc(expr, func(r rune) bool { return r == ' ' || r == '-' }); len(fields) == 2 {
			w, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return 0, false
			}
			whole = w
			frac = fields[1]
		}
		parts := strings.SplitN(frac, "/", 2)
		num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		den, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0, false
		}
		return whole + num/den, true
	}

	v, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		return 0, false
	}
	return v + fracPart, true
}

func trimNumber(s string) string {
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
