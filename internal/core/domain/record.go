package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RecordKind identifies the kind of dashboard entity a record describes.
type RecordKind string

const (
	KindOrder      RecordKind = "order"
	KindVehicle    RecordKind = "vehicle"
	KindGridMember RecordKind = "grid_member"
	KindTask       RecordKind = "task"
	KindRoute      RecordKind = "route"
)

// AllRecordKinds lists every supported kind in display order.
var AllRecordKinds = []RecordKind{KindOrder, KindVehicle, KindGridMember, KindTask, KindRoute}

// IsValid checks if the kind is one of the supported record kinds.
func (k RecordKind) IsValid() bool {
	for _, kind := range AllRecordKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Record is one domain entity as a flat field mapping.
// Values are scalars: string, number, bool or nil.
type Record map[string]any

// ID returns the record's id field rendered as a string.
func (r Record) ID() string {
	return r.Text("id")
}

// Status returns the record's status field rendered as a string.
func (r Record) Status() string {
	return r.Text("status")
}

// Text returns the field value rendered as a string.
// Missing fields and nil values read as the empty string.
func (r Record) Text(field string) string {
	if r == nil {
		return ""
	}
	return ScalarText(r[field])
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ScalarText renders a scalar the way a browser prints it: integers without
// a decimal point, floats in shortest form, booleans as true/false.
func ScalarText(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return formatNumber(value, 64)
	case float32:
		return formatNumber(float64(value), 32)
	case int:
		return strconv.Itoa(value)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case uint:
		return strconv.FormatUint(uint64(value), 10)
	case uint32:
		return strconv.FormatUint(uint64(value), 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	default:
		// Nested values are not scalars; they never match anything.
		return ""
	}
}

// formatNumber prints a float like a browser's Number toString: plain
// decimals within [1e-6, 1e21), exponent form outside it.
func formatNumber(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	}

	// Go pads the exponent to two digits ("1e-07"); browsers do not.
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, bitSize), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

// isPresent reports whether a field value counts as supplied.
// Numeric zero and false are present; nil and "" are not.
func isPresent(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return value != ""
	default:
		return true
	}
}
