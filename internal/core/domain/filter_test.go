package domain_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
)

func sampleOrders() []domain.Record {
	return []domain.Record{
		{"id": "SO-1001", "addressee": "Li Wei", "sender": "Acme Corp", "status": "delivered", "type": "express"},
		{"id": "SO-1002", "receiverName": "Wang Fang", "senderName": "Acme Corp", "status": "in_transit", "type": "standard"},
		{"id": "SO-1003", "receiver": "Zhang San", "status": "pending", "type": "express"},
		{"id": 1004, "addressee": nil, "status": "delivered"},
	}
}

func ids(records []domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

func TestMatch_EmptyCriteriaIsIdentity(t *testing.T) {
	orders := sampleOrders()
	schema := domain.SchemaFor(domain.KindOrder)

	tests := []struct {
		name     string
		criteria domain.Criteria
	}{
		{"nil criteria", nil},
		{"no keys", domain.Criteria{}},
		{"all empty values", domain.Criteria{"name": "", "status": "", "orderNo": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Match(orders, tt.criteria, schema)
			if diff := cmp.Diff(orders, got); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatch_Criteria(t *testing.T) {
	orders := sampleOrders()
	schema := domain.SchemaFor(domain.KindOrder)

	tests := []struct {
		name     string
		criteria domain.Criteria
		want     []string
	}{
		{
			name:     "name matches any candidate field",
			criteria: domain.Criteria{"name": "Acme"},
			want:     []string{"SO-1001", "SO-1002"},
		},
		{
			name:     "name matches receiver variant",
			criteria: domain.Criteria{"name": "Zhang"},
			want:     []string{"SO-1003"},
		},
		{
			name:     "substring match is case-sensitive",
			criteria: domain.Criteria{"name": "acme"},
			want:     []string{},
		},
		{
			name:     "status uses equality",
			criteria: domain.Criteria{"status": "deliver"},
			want:     []string{},
		},
		{
			name:     "status exact value",
			criteria: domain.Criteria{"status": "delivered"},
			want:     []string{"SO-1001", "1004"},
		},
		{
			name:     "criteria combine with AND",
			criteria: domain.Criteria{"status": "delivered", "name": "Li"},
			want:     []string{"SO-1001"},
		},
		{
			name:     "numeric id renders without decimals",
			criteria: domain.Criteria{"orderNo": "100"},
			want:     []string{"SO-1001", "SO-1002", "SO-1003", "1004"},
		},
		{
			name:     "undeclared criterion searches its own field",
			criteria: domain.Criteria{"sender": "Acme"},
			want:     []string{"SO-1001"},
		},
		{
			name:     "no matches yields empty",
			criteria: domain.Criteria{"orderNo": "XYZ"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Match(orders, tt.criteria, schema)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestMatch_MissingFieldsReadAsEmpty(t *testing.T) {
	records := []domain.Record{
		{"id": "a"},
		{"id": "b", "status": nil},
		{"id": "c", "status": "active"},
	}

	got := domain.Match(records, domain.Criteria{"status": "active"}, domain.FilterSchema{
		"status": {Fields: []string{"status"}, Mode: domain.MatchEquals},
	})
	assert.Equal(t, []string{"c"}, ids(got))

	// Missing fields alone never exclude a record.
	got = domain.Match(records, domain.Criteria{"status": ""}, domain.FilterSchema{})
	assert.Len(t, got, 3)
}

func TestMatch_JoinedCandidateFields(t *testing.T) {
	records := []domain.Record{
		{"id": "r1", "addressee": "Li", "sender": "Wei"},
	}
	schema := domain.SchemaFor(domain.KindOrder)

	got := domain.Match(records, domain.Criteria{"name": "Li"}, schema)
	assert.Len(t, got, 1)

	// Candidate fields are joined with a single space.
	got = domain.Match(records, domain.Criteria{"name": "LiWei"}, schema)
	assert.Empty(t, got)
}

func TestMatch_DoesNotMutateInput(t *testing.T) {
	orders := sampleOrders()
	before := make([]domain.Record, len(orders))
	for i, r := range orders {
		before[i] = r.Clone()
	}

	_ = domain.Match(orders, domain.Criteria{"status": "delivered"}, domain.SchemaFor(domain.KindOrder))

	if diff := cmp.Diff(before, orders); diff != "" {
		t.Errorf("input modified (-before +after):\n%s", diff)
	}
}

func TestMatch_ExcludesOnAnyFailingCriterion(t *testing.T) {
	schema := domain.SchemaFor(domain.KindVehicle)
	vehicle := domain.Record{"id": "V1", "plate": "AB-123", "driver": "Chen", "status": "online"}

	failing := []domain.Criteria{
		{"plate": "ZZ"},
		{"driver": "Chen", "status": "offline"},
		{"id": "V1", "plate": "AB", "driver": "Wu"},
	}
	for _, criteria := range failing {
		assert.Empty(t, domain.Match([]domain.Record{vehicle}, criteria, schema), "criteria %v", criteria)
	}
}

func TestScalarText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{float64(12), "12"},
		{12.5, "12.5"},
		{0.1, "0.1"},
		{math.Copysign(0, -1), "0"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{-2.5e30, "-2.5e+30"},
		{math.Inf(1), "Infinity"},
		{math.NaN(), "NaN"},
		{int64(-3), "-3"},
		{true, "true"},
		{map[string]any{"x": 1}, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.ScalarText(tt.in))
	}
}

func TestRecordKind_IsValid(t *testing.T) {
	assert.True(t, domain.KindOrder.IsValid())
	assert.True(t, domain.KindGridMember.IsValid())
	assert.False(t, domain.RecordKind("warehouse").IsValid())
	assert.False(t, domain.RecordKind("").IsValid())
}
