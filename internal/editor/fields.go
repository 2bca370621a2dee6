// Package editor implements the incremental edit and reconciliation
// engine behind the bid line-item tables: diff-based change detection,
// per-row edit state with save guards, explicit and background save
// paths, and door fan-out duplication. It talks to the backing API
// through the BidAPI contract and holds no persistent state itself.
package editor

import (
	"math"
	"strconv"
	"strings"
)

// Field names one of the tracked line-item attributes.
type Field string

const (
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldPrice       Field = "price"
	FieldLaborHours  Field = "labor_hours"
	FieldHardware    Field = "hardware"
)

// trackedFields is the comparison set for change detection. Identity
// attributes (id, position) are deliberately absent.
var trackedFields = []Field{
	FieldDescription,
	FieldQuantity,
	FieldPrice,
	FieldLaborHours,
	FieldHardware,
}

// Fields is the editable slice of a line item. Numeric values are
// floats end to end; the wire format carries JSON numbers, never
// stringified digits.
type Fields struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	LaborHours  float64 `json:"labor_hours"`
	Hardware    float64 `json:"hardware"`
}

// Sanitized returns a copy safe to put on the wire: NaN/Inf collapse
// to zero and description is never null, only possibly empty.
func (f Fields) Sanitized() Fields {
	return Fields{
		Description: f.Description,
		Quantity:    sanitizeNumber(f.Quantity),
		Price:       sanitizeNumber(f.Price),
		LaborHours:  sanitizeNumber(f.LaborHours),
		Hardware:    sanitizeNumber(f.Hardware),
	}
}

func sanitizeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CoerceNumber parses raw form input into a float, collapsing
// unparseable input to zero rather than failing the edit.
func CoerceNumber(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return sanitizeNumber(v)
}
