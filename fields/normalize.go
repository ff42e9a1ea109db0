package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reDateSep    = regexp.MustCompile(`[.\-/]`)
	reNumToken   = regexp.MustCompile(`\d+([.,]\d+)?`)
	reNonDigit   = regexp.MustCompile(`\D`)
	reOrgVariant = regexp.MustCompile(`(?i)(^|[^\pL])(ооо|зао|оао|ип)([^\pL]|$)`)
)

// normalizeValue canonicalizes a matched value for its field. The second
// return reports whether the value survived validation.
func normalizeValue(field, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	switch field {
	case DeliveryDate:
		return normalizeDate(value)
	case Quantity:
		v := strings.ReplaceAll(value, ",", ".")
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "", false
		}
		return v, true
	case CargoWeight:
		tok := reNumToken.FindString(value)
		if tok == "" {
			return "", false
		}
		return strings.ReplaceAll(tok, ",", "."), true
	case SupplierINN:
		digits := reNonDigit.ReplaceAllString(value, "")
		if len(digits) != 10 && len(digits) != 12 {
			return "", false
		}
		return digits, true
	case Supplier:
		return recaseOrgForm(value), true
	default:
		return value, true
	}
}

// normalizeDate converts the common written forms (10.06.2014, 10/06/14,
// 10-06-2014) to ISO YYYY-MM-DD. Unparseable values pass through trimmed
// so a legible but odd date is kept rather than discarded.
func normalizeDate(value string) (string, bool) {
	parts := reDateSep.Split(value, -1)
	if len(parts) != 3 {
		return value, true
	}
	day, errD := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errD != nil || errM != nil || errY != nil {
		return value, true
	}
	if len(parts[2]) == 2 {
		year += 2000
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// recaseOrgForm upper-cases legal form abbreviations that survived OCR
// in mixed case, so "ооо «БЕКАМ»" becomes "ООО «БЕКАМ»".
func recaseOrgForm(value string) string {
	return reOrgVariant.ReplaceAllStringFunc(value, strings.ToUpper)
}
