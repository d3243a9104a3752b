package property

import (
	"regexp"
	"strings"
)

// Facts are the structured fields an enrichment source may supply about a
// building. Empty fields are unknown.
type Facts struct {
	PropertyType string
	Class        string
	Zoning       string
	Units        *int64
	Bedrooms     *int64
	Sqft         *int64
}

var (
	multiFamilyText = regexp.MustCompile(`multi[\s-]?family|\bmulti\b|apartment|duplex|triplex|fourplex|quadplex`)
	commercialText  = regexp.MustCompile(`commercial|office|retail|industrial|warehouse|\bstore\b|shopping|plaza|mixed[\s-]use`)
	commercialZone  = regexp.MustCompile(`^(c|m|i)[\d-]|commercial|industrial|business|office|mixed`)
	singleFamilyRE  = regexp.MustCompile(`single[\s-]?family|\bsfr\b|residential`)
	corporateName   = regexp.MustCompile(`\b(llc|inc|corp|corporation|ltd|lp|llp|company|co|enterprises|properties|investments|holdings|trust|partnership|assoc|associates)\b`)
)

// InferType derives a property type and a confidence score from structured
// fields. Explicit unit counts are the strongest evidence, then free-text
// type keywords, then zoning, then bedroom and size heuristics.
func InferType(f Facts) (Type, int) {
	text := strings.ToLower(f.PropertyType + " " + f.Class)
	zoning := strings.ToLower(strings.TrimSpace(f.Zoning))
	units := valueOr(f.Units, 0)
	beds := valueOr(f.Bedrooms, 0)

	switch {
	case units >= 2:
		return TypeMultiFamily, 95
	case multiFamilyText.MatchString(text):
		return TypeMultiFamily, 85
	case commercialText.MatchString(text):
		return TypeCommercial, 85
	case zoning != "" && commercialZone.MatchString(zoning):
		return TypeCommercial, 75
	case singleFamilyRE.MatchString(text):
		return TypeSingleFamily, 90
	case beds >= 1 && units <= 1:
		return TypeSingleFamily, 80
	case valueOr(f.Sqft, 0) > 5000 && beds == 0:
		return TypeCommercial, 60
	}
	return TypeUnknown, 0
}

// IsCorporateName reports whether an owner name looks like a business entity
// rather than a person.
func IsCorporateName(name string) bool {
	return corporateName.MatchString(strings.ToLower(name))
}

func valueOr(v *int64, def int64) int64 {
	if v == nil {
		return def
	}
	return *v
}
