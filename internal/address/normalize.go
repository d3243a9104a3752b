// Package address reduces street addresses to a canonical comparison key.
package address

import (
	"strings"

	"golang.org/x/text/cases"
)

// unitDesignators introduce a secondary unit; the designator and its value
// are dropped so "123 Main St Apt 4" and "123 Main St" compare equal.
// A designator that leads the street name ("123 Lot Street") is kept.
var unitDesignators = map[string]bool{
	"unit":      true,
	"apt":       true,
	"apartment": true,
	"suite":     true,
	"ste":       true,
	"bldg":      true,
	"building":  true,
	"lot":       true,
	"rm":        true,
	"room":      true,
	"floor":     true,
	"fl":        true,
}

// abbreviations follows USPS Publication 28 street suffixes and directionals.
// Every value is a fixed point: no value appears as a key.
var abbreviations = map[string]string{
	"street":     "st",
	"str":        "st",
	"avenue":     "ave",
	"av":         "ave",
	"aven":       "ave",
	"drive":      "dr",
	"drv":        "dr",
	"road":       "rd",
	"boulevard":  "blvd",
	"boul":       "blvd",
	"lane":       "ln",
	"court":      "ct",
	"circle":     "cir",
	"place":      "pl",
	"terrace":    "ter",
	"parkway":    "pkwy",
	"pky":        "pkwy",
	"highway":    "hwy",
	"hiway":      "hwy",
	"trail":      "trl",
	"square":     "sq",
	"expressway": "expy",
	"crossing":   "xing",
	"extension":  "ext",
	"heights":    "hts",
	"junction":   "jct",
	"mount":      "mt",
	"mountain":   "mtn",
	"point":      "pt",
	"ridge":      "rdg",
	"north":      "n",
	"south":      "s",
	"east":       "e",
	"west":       "w",
	"northeast":  "ne",
	"northwest":  "nw",
	"southeast":  "se",
	"southwest":  "sw",
}

var punctuation = strings.NewReplacer(
	"’", "'",
	".", "",
	",", " ",
	";", " ",
)

// Normalize returns the canonical form of an address: case-folded,
// punctuation removed, unit designators stripped, street types and
// directionals abbreviated and whitespace collapsed.
//
// Normalize is idempotent. An empty result means the input had no usable
// address content.
func Normalize(input string) string {
	folded := cases.Fold().String(input)
	fields := strings.Fields(punctuation.Replace(folded))

	out := make([]string, 0, len(fields))
	named := false
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if tok == "#" || (unitDesignators[tok] && (named || len(out) == 0)) {
			i++ // skip the unit value as well
			continue
		}
		if strings.HasPrefix(tok, "#") {
			continue
		}
		if abbr, ok := abbreviations[tok]; ok {
			tok = abbr
		}
		if !named && isNameToken(tok) {
			named = true
		}
		out = append(out, tok)
	}

	return strings.Join(out, " ")
}

var directionals = map[string]bool{
	"n": true, "s": true, "e": true, "w": true,
	"ne": true, "nw": true, "se": true, "sw": true,
}

// isNameToken reports whether tok can start a street name, as opposed to a
// house number or a leading directional.
func isNameToken(tok string) bool {
	if directionals[tok] {
		return false
	}
	return !strings.ContainsAny(tok, "0123456789")
}
