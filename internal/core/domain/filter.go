package domain

import (
	"sort"
	"strings"
)

// Criteria holds user-entered filter values keyed by criterion name.
// An empty value places no constraint on that criterion.
type Criteria map[string]string

// IsEmpty reports whether no criterion constrains the result.
func (c Criteria) IsEmpty() bool {
	for _, value := range c {
		if value != "" {
			return false
		}
	}
	return true
}

// MatchMode defines how a criterion value is compared to record fields.
type MatchMode int

const (
	// MatchContains keeps a record when the joined candidate fields contain the value.
	MatchContains MatchMode = iota
	// MatchEquals keeps a record when any candidate field equals the value.
	MatchEquals
)

// FilterRule binds one logical criterion to the record fields it searches.
type FilterRule struct {
	Fields []string
	Mode   MatchMode
}

// FilterSchema maps criterion names to rules for one record kind.
type FilterSchema map[string]FilterRule

// Rule returns the rule for a criterion. Criteria the schema does not
// declare search the record field of the same name by substring.
func (s FilterSchema) Rule(criterion string) FilterRule {
	if rule, ok := s[criterion]; ok {
		return rule
	}
	return FilterRule{Fields: []string{criterion}, Mode: MatchContains}
}

// Criteria returns the criterion names declared by the schema, sorted.
func (s FilterSchema) Criteria() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(fields ...string) FilterRule {
	return FilterRule{Fields: fields, Mode: MatchContains}
}

func equals(fields ...string) FilterRule {
	return FilterRule{Fields: fields, Mode: MatchEquals}
}

var schemas = map[RecordKind]FilterSchema{
	KindOrder: {
		"orderNo": contains("orderNo", "orderId", "id"),
		"name":    contains("addressee", "addresseeName", "receiver", "receiverName", "sender", "senderName"),
		"phone":   contains("phone", "receiverPhone", "senderPhone"),
		"address": contains("address", "receiverAddress", "senderAddress"),
		"type":    equals("type"),
		"status":  equals("status"),
	},
	KindVehicle: {
		"id":     contains("id"),
		"plate":  contains("plate"),
		"driver": contains("driver"),
		"type":   equals("type"),
		"status": equals("status"),
	},
	KindGridMember: {
		"name":   contains("name", "memberName"),
		"grid":   contains("grid", "gridName"),
		"phone":  contains("phone"),
		"role":   equals("role"),
		"status": equals("status"),
	},
	KindTask: {
		"title":    contains("title", "taskName"),
		"assignee": contains("assignee", "assigneeName", "handler"),
		"type":     equals("type"),
		"status":   equals("status"),
	},
	KindRoute: {
		"name":   contains("name", "routeName"),
		"origin": contains("origin", "start", "startPoint"),
		"dest":   contains("destination", "end", "endPoint"),
		"status": equals("status"),
	},
}

// SchemaFor returns the built-in filter schema for a record kind.
// Unknown kinds get an empty schema, so every criterion matches its own field.
func SchemaFor(kind RecordKind) FilterSchema {
	if schema, ok := schemas[kind]; ok {
		return schema
	}
	return FilterSchema{}
}

// Match returns the records satisfying every non-empty criterion, in input
// order. Text rules join their candidate fields with a space and test for a
// case-sensitive substring; enum rules need one candidate to equal the value.
// Inputs are never modified.
func Match(records []Record, criteria Criteria, schema FilterSchema) []Record {
	active := activeRules(criteria, schema)

	out := make([]Record, 0, len(records))
	for _, record := range records {
		if matchesAll(record, active) {
			out = append(out, record)
		}
	}
	return out
}

type activeRule struct {
	rule  FilterRule
	value string
}

func activeRules(criteria Criteria, schema FilterSchema) []activeRule {
	names := make([]string, 0, len(criteria))
	for name, value := range criteria {
		if value != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	rules := make([]activeRule, 0, len(names))
	for _, name := range names {
		rules = append(rules, activeRule{rule: schema.Rule(name), value: criteria[name]})
	}
	return rules
}

func matchesAll(record Record, rules []activeRule) bool {
	for _, r := range rules {
		if !matchesRule(record, r.rule, r.value) {
			return false
		}
	}
	return true
}

func matchesRule(record Record, rule FilterRule, value string) bool {
	switch rule.Mode {
	case MatchEquals:
		for _, field := range rule.Fields {
			if record.Text(field) == value {
				return true
			}
		}
		return false
	default:
		parts := make([]string, len(rule.Fields))
		for i, field := range rule.Fields {
			parts[i] = record.Text(field)
		}
		return strings.Contains(strings.Join(parts, " "), value)
	}
}
