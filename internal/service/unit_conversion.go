package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

type unitFamily int

const (
	familyUnknown unitFamily = iota
	familyCount
	familyVolume
)

type unitInfo struct {
	family unitFamily
	// perBase is how many base units (1 for counts, millilitres for volumes) one unit holds.
	perBase decimal.Decimal
}

var one = decimal.NewFromInt(1)

var unitTable = map[string]unitInfo{
	// countable solids are fungible 1:1
	"tablet":      {familyCount, one},
	"capsule":     {familyCount, one},
	"each":        {familyCount, one},
	"unit":        {familyCount, one},
	"pill":        {familyCount, one},
	"patch":       {familyCount, one},
	"suppository": {familyCount, one},
	"lozenge":     {familyCount, one},
	"troche":      {familyCount, one},
	"film":        {familyCount, one},
	"packet":      {familyCount, one},
	"vial":        {familyCount, one},
	"inhaler":     {familyCount, one},
	"pen":         {familyCount, one},
	"puff":        {familyCount, one},
	"actuation":   {familyCount, one},

	"ml":    {familyVolume, one},
	"l":     {familyVolume, decimal.NewFromInt(1000)},
	"tsp":   {familyVolume, decimal.NewFromInt(5)},
	"tbsp":  {familyVolume, decimal.NewFromInt(15)},
	"fl oz": {familyVolume, decimal.RequireFromString("29.5735")},
}

var unitAliases = map[string]string{
	"tab":         "tablet",
	"caplet":      "tablet",
	"cap":         "capsule",
	"ea":          "each",
	"cc":          "ml",
	"milliliter":  "ml",
	"millilitre":  "ml",
	"liter":       "l",
	"litre":       "l",
	"teaspoon":    "tsp",
	"tablespoon":  "tbsp",
	"fluid ounce": "fl oz",
	"floz":        "fl oz",
}

// lookupUnit finds a unit in the table, tolerating case, dots and plural forms.
func lookupUnit(unit string) (unitInfo, bool) {
	_, info, ok := canonicalUnit(unit)
	return info, ok
}

// canonicalUnit returns the table spelling of unit.
func canonicalUnit(unit string) (string, unitInfo, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.ReplaceAll(u, ".", "")
	if u == "" {
		return "", unitInfo{}, false
	}
	candidates := []string{u}
	if strings.HasSuffix(u, "es") {
		candidates = append(candidates, strings.TrimSuffix(u, "es"))
	}
	if strings.HasSuffix(u, "s") {
		candidates = append(candidates, strings.TrimSuffix(u, "s"))
	}
	for _, c := range candidates {
		if alias, ok := unitAliases[c]; ok {
			c = alias
		}
		if info, ok := unitTable[c]; ok {
			return c, info, true
		}
	}
	return "", unitInfo{}, false
}

// ConvertUnit converts qty between units of the same family.
// The boolean is false when no conversion happened; qty is then returned unchanged.
func ConvertUnit(qty decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	src, ok := lookupUnit(from)
	if !ok {
		return qty, false
	}
	dst, ok := lookupUnit(to)
	if !ok || src.family != dst.family {
		return qty, false
	}
	return qty.Mul(src.perBase).Div(dst.perBase), true
}

// IsDiscreteUnit reports whether the unit is counted in whole items.
func IsDiscreteUnit(unit string) bool {
	info, ok := lookupUnit(unit)
	return ok && info.family == familyCount
}

// RoundForDispensing rounds qty to a dispensable amount: whole items for countable
// units (always rounding up), one decimal for volumes and two decimals otherwise.
func RoundForDispensing(qty decimal.Decimal, unit string) decimal.Decimal {
	info, ok := lookupUnit(unit)
	switch {
	case ok && info.family == familyCount:
		return qty.Ceil()
	case ok && info.family == familyVolume:
		return qty.Round(1)
	default:
		return qty.Round(2)
	}
}

// sameUnit compares catalog and dosing units, treating known spellings
// ("Tabs", "tablet") of one unit as equal.
func sameUnit(a, b string) bool {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return true
	}
	ca, _, okA := canonicalUnit(a)
	cb, _, okB := canonicalUnit(b)
	return okA && okB && ca == cb
}
