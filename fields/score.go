package fields

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	scoreBase = 50
	scoreMax  = 100
)

type scoreFunc func(value string) int

var (
	reQuantityShape = regexp.MustCompile(`^\d+([.,]\d+)?$`)
	reDateShape     = regexp.MustCompile(`^\d{1,2}[.\-/]\d{1,2}[.\-/]\d{2,4}$`)
	rePlateShape    = regexp.MustCompile(`^[А-ЯЁ]\d{3}[А-ЯЁ]{2}\d{2,3}$`)
	reINNShape      = regexp.MustCompile(`^\d{10,12}$`)
	reCountShape    = regexp.MustCompile(`^\d+$`)
)

// scorers award shape bonuses on top of the base match score. Fields
// without an entry keep the base score alone.
var scorers = map[string]scoreFunc{
	Supplier: func(v string) int {
		bonus := 0
		lower := strings.ToLower(v)
		for _, form := range []string{"ооо", "зао", "ип", "оао"} {
			if strings.Contains(lower, form) {
				bonus += 30
				break
			}
		}
		if utf8.RuneCountInString(v) > 10 {
			bonus += 10
		}
		return bonus
	},
	Quantity: func(v string) int {
		if reQuantityShape.MatchString(v) {
			return 40
		}
		return 0
	},
	DeliveryDate: func(v string) int {
		if reDateShape.MatchString(v) {
			return 40
		}
		return 0
	},
	VehicleNumber: func(v string) int {
		if rePlateShape.MatchString(v) {
			return 45
		}
		return 0
	},
	SupplierINN: func(v string) int {
		if reINNShape.MatchString(v) {
			return 45
		}
		return 0
	},
	PackageCount: func(v string) int {
		if reCountShape.MatchString(v) && v != "0" {
			return 40
		}
		return 0
	},
}

// Score rates a candidate value for a field on a 0 to 100 scale. Values
// shorter than two runes are rejected outright.
func Score(field, value string) int {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) < 2 {
		return 0
	}
	score := scoreBase
	if fn, ok := scorers[field]; ok {
		score += fn(value)
	}
	if score > scoreMax {
		score = scoreMax
	}
	return score
}
