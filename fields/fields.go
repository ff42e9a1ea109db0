// Package fields extracts the ten semantic waybill fields from normalized
// OCR text. Every field carries an ordered list of tolerant recognizers; all
// of them are tried and the hit with the highest scored confidence wins, so
// a later, more specific pattern can override an earlier generic one.
package fields

import (
	"strings"
)

// Recognized field keys, in publication order.
const (
	DeliveryDate   = "delivery_date"
	DocumentNumber = "document_number"
	Supplier       = "supplier"
	MaterialType   = "material_type"
	Quantity       = "quantity"
	PackageCount   = "package_count"
	DriverName     = "driver_name"
	VehicleNumber  = "vehicle_number"
	SupplierINN    = "supplier_inn"
	CargoWeight    = "cargo_weight"
)

var fieldOrder = []string{
	DeliveryDate,
	DocumentNumber,
	Supplier,
	MaterialType,
	Quantity,
	PackageCount,
	DriverName,
	VehicleNumber,
	SupplierINN,
	CargoWeight,
}

// Keys returns the recognized field keys in publication order.
func Keys() []string {
	return append([]string(nil), fieldOrder...)
}

// Extraction is the structured outcome of one pass over normalized text.
// Fields only holds keys whose value survived normalization; a field nothing
// matched is simply absent.
type Extraction struct {
	Fields           map[string]string
	FieldConfidences map[string]int
	Confidence       int
}

// Extract evaluates every recognizer of every field over text and keeps the
// single highest-confidence normalized value per field. The overall
// confidence is the truncated mean of the kept per-field confidences, zero
// when nothing matched.
func Extract(text string) Extraction {
	values := make(map[string]string)
	confidences := make(map[string]int)

	for _, field := range fieldOrder {
		var bestRaw string
		var best int
		for _, rec := range recognizers[field] {
			m := rec.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			value := strings.TrimSpace(m[rec.group])
			if c := Score(field, value); c > best {
				best, bestRaw = c, value
			}
		}
		if bestRaw == "" {
			continue
		}
		normalized, ok := normalizeValue(field, bestRaw)
		if !ok || normalized == "" {
			continue
		}
		values[field] = normalized
		confidences[field] = best
	}

	overall := 0
	if len(confidences) > 0 {
		sum := 0
		for _, c := range confidences {
			sum += c
		}
		overall = sum / len(confidences)
	}
	return Extraction{Fields: values, FieldConfidences: confidences, Confidence: overall}
}

// WithCompletenessBonus adds a small bonus proportional to the number of
// extracted fields, capped at 100. Only meaningful for backends whose
// engine-level confidence is trustworthy (line-aggregating recognizers).
func (e Extraction) WithCompletenessBonus() Extraction {
	c := e.Confidence + 2*len(e.Fields)
	if c > 100 {
		c = 100
	}
	e.Confidence = c
	return e
}
