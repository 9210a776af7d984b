package domain

import "sort"

// CanonicalField names a normalized field and the upstream names it may
// arrive under, in priority order. The canonical name should be listed first
// so that normalizing canonical records is a no-op.
type CanonicalField struct {
	Name       string
	Candidates []string
}

// FieldAliases describes how one record kind is normalized.
type FieldAliases []CanonicalField

// VehicleAliases covers the field-name variants seen across vehicle feeds.
var VehicleAliases = FieldAliases{
	{Name: "id", Candidates: []string{"id", "vehicleId", "carId"}},
	{Name: "plate", Candidates: []string{"plate", "plateNumber", "licensePlate", "carNo"}},
	{Name: "driver", Candidates: []string{"driver", "driverName"}},
	{Name: "type", Candidates: []string{"type", "vehicleType", "carType"}},
	{Name: "status", Candidates: []string{"status", "state"}},
	{Name: "battery", Candidates: []string{"battery", "batteryLevel"}},
	{Name: "lng", Candidates: []string{"lng", "longitude", "lon"}},
	{Name: "lat", Candidates: []string{"lat", "latitude"}},
	{Name: "speed", Candidates: []string{"speed"}},
	{Name: "address", Candidates: []string{"address", "location"}},
	{Name: "updatedAt", Candidates: []string{"updatedAt", "updateTime", "timestamp"}},
}

// AliasesFor returns the normalization aliases for a record kind, or nil
// when records of that kind are stored canonically already.
func AliasesFor(kind RecordKind) FieldAliases {
	if kind == KindVehicle {
		return VehicleAliases
	}
	return nil
}

// Normalize coerces a record collection to canonical records.
//
// source may be a sequence of records or a mapping of id to record, either
// as decoded JSON ([]any, map[string]any) or typed ([]Record,
// map[string]Record). Mappings are emitted in ascending key order, and the
// key stands in for a missing id. Anything else yields an empty result.
func Normalize(source any, aliases FieldAliases) []Record {
	switch src := source.(type) {
	case []Record:
		out := make([]Record, 0, len(src))
		for _, r := range src {
			if r != nil {
				out = append(out, canonical(r, aliases, ""))
			}
		}
		return out
	case []map[string]any:
		out := make([]Record, 0, len(src))
		for _, r := range src {
			if r != nil {
				out = append(out, canonical(r, aliases, ""))
			}
		}
		return out
	case []any:
		out := make([]Record, 0, len(src))
		for _, item := range src {
			if r, ok := asRecord(item); ok {
				out = append(out, canonical(r, aliases, ""))
			}
		}
		return out
	case map[string]Record:
		out := make([]Record, 0, len(src))
		for _, key := range sortedKeys(src) {
			if r := src[key]; r != nil {
				out = append(out, canonical(r, aliases, key))
			}
		}
		return out
	case map[string]any:
		out := make([]Record, 0, len(src))
		for _, key := range sortedKeys(src) {
			if r, ok := asRecord(src[key]); ok {
				out = append(out, canonical(r, aliases, key))
			}
		}
		return out
	default:
		return []Record{}
	}
}

func asRecord(v any) (Record, bool) {
	switch r := v.(type) {
	case Record:
		return r, r != nil
	case map[string]any:
		return Record(r), r != nil
	default:
		return nil, false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// canonical builds a record with exactly the canonical fields. With no
// aliases the record is copied unchanged.
func canonical(src Record, aliases FieldAliases, fallbackID string) Record {
	if len(aliases) == 0 {
		out := src.Clone()
		if fallbackID != "" && !isPresent(out["id"]) {
			out["id"] = fallbackID
		}
		return out
	}

	out := make(Record, len(aliases))
	for _, field := range aliases {
		out[field.Name] = firstPresent(src, field.Candidates)
	}
	if fallbackID != "" && !isPresent(out["id"]) {
		out["id"] = fallbackID
	}
	return out
}

func firstPresent(src Record, candidates []string) any {
	for _, name := range candidates {
		if v, ok := src[name]; ok && isPresent(v) {
			return v
		}
	}
	return ""
}
