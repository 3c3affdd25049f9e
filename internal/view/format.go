package view

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// formatGrouped rounds d half away from zero to places and inserts thousands
// separators. fixed pads the fraction to exactly places digits; otherwise
// trailing zeros are dropped.
func formatGrouped(d decimal.Decimal, places int32, fixed bool) string {
	rounded := d.Round(places)

	var s string
	if fixed {
		s = rounded.StringFixed(places)
	} else {
		s = rounded.String()
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")
	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return s
	}

	out := humanize.BigComma(whole)
	if hasFrac {
		out += "." + frac
	}
	if negative && strings.Trim(out, "0.,") != "" {
		out = "-" + out
	}
	return out
}
