package product

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var priceNumRe = regexp.MustCompile(`\d[\d.,]*`)

// ParsePrice extracts the first amount from a currency-formatted string.
// US ("1,299.00") and EU ("1.299,00", "12,99") separators are both
// understood. Returns nil when text holds no parsable amount.
func ParsePrice(text string) *float64 {
	m := priceNumRe.FindString(text)
	if m == "" {
		return nil
	}
	s := strings.TrimRight(m, ".,")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		// A lone dot followed by exactly three digits is a thousands
		// separator ("1.299"); anything else is a decimal point.
		if strings.Count(s, ".") > 1 || (len(s)-lastDot-1 == 3 && strings.TrimLeft(s[:lastDot], "0") != "") {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil
	}
	return &f
}

// ldPrice reads a schema.org price that may be encoded as a number or a
// string.
func ldPrice(r gjson.Result) *float64 {
	switch r.Type {
	case gjson.Number:
		f := r.Float()
		return &f
	case gjson.String:
		return ParsePrice(r.String())
	default:
		return nil
	}
}
