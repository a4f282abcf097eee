package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/model"
)

func details(t *testing.T, err error) []string {
	t.Helper()
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, apperr.KindValidation, e.Kind)
	return e.Details
}

func TestEverySchemaHasADescriptor(t *testing.T) {
	for name := range schemas {
		_, err := catalog.Get(name)
		assert.NoError(t, err, name)
	}
	_, err := For(catalog.History)
	assert.Error(t, err)
}

func TestInventoryValidation(t *testing.T) {
	s, err := For(catalog.Inventory)
	require.NoError(t, err)

	require.NoError(t, s.Validate(model.Record{"cargo_name": "bolt", "model": "M6", "count": "0", "price": "0.5"}))

	tests := []struct {
		name   string
		values model.Record
		want   []string
	}{
		{"missing everything", model.Record{}, []string{
			"Name is required", "Model is required", "Count is required", "Unit price is required",
		}},
		{"negative count", model.Record{"cargo_name": "a", "model": "b", "count": "-1", "price": "1"},
			[]string{"Count must not be negative"}},
		{"fractional count", model.Record{"cargo_name": "a", "model": "b", "count": "1.5", "price": "1"},
			[]string{"Count must be a whole number"}},
		{"bad price", model.Record{"cargo_name": "a", "model": "b", "count": "1", "price": "cheap"},
			[]string{"Unit price must be a non-negative number"}},
		{"blank name", model.Record{"cargo_name": "   ", "model": "b", "count": "1", "price": "1"},
			[]string{"Name is required"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, details(t, s.Validate(tt.values)))
		})
	}
}

func TestOrderValidation(t *testing.T) {
	s, err := For(catalog.Orders)
	require.NoError(t, err)

	valid := model.Record{
		"order_type": "inbound", "cargo_name": "bolt", "model": "M6",
		"price": "2", "count": "10", "project": "Bridge",
		"status": "waiting", "employee_name": "Li",
	}
	require.NoError(t, s.Validate(valid))

	noParty := valid.Clone()
	noParty["project"] = "null"
	assert.Equal(t, []string{"Provider or Project is required"}, details(t, s.Validate(noParty)))

	badType := valid.Clone()
	badType["order_type"] = "sideways"
	assert.Equal(t, []string{"Type has an unknown value"}, details(t, s.Validate(badType)))
}

func TestOrderEditable(t *testing.T) {
	s, _ := For(catalog.Orders)
	assert.True(t, s.Editable(model.Record{"status": "waiting"}))
	assert.False(t, s.Editable(model.Record{"status": "pass"}))
	assert.False(t, s.Editable(model.Record{"status": "reject"}))

	inv, _ := For(catalog.Inventory)
	assert.True(t, inv.Editable(model.Record{"status": "pass"}))
}

func TestUserPasswords(t *testing.T) {
	s, err := For(catalog.Users)
	require.NoError(t, err)

	values := model.Record{"username": "bob", "employee_name": "Bob", "password": "a", "confirm_password": "b"}
	assert.Equal(t, []string{"Passwords do not match"}, details(t, s.Validate(values)))

	values["confirm_password"] = "a"
	require.NoError(t, s.Validate(values))

	payload := s.Payload(values)
	assert.NotContains(t, payload, "confirm_password")
	assert.Equal(t, "a", payload["password"])
}

func TestPayloadTrimsAndDropsReadonly(t *testing.T) {
	s, _ := For(catalog.Orders)
	payload := s.Payload(model.Record{"cargo_name": "  bolt ", "order_id": "SO-1", "extra": "kept"})
	assert.Equal(t, "bolt", payload["cargo_name"])
	assert.NotContains(t, payload, "order_id")
	assert.Equal(t, "kept", payload["extra"])
}

func TestHistoryQuery(t *testing.T) {
	q, err := HistoryQuery(" 2024 ", "03")
	require.NoError(t, err)
	assert.Equal(t, "2024", q.Get("year"))
	assert.Equal(t, "3", q.Get("month"))

	tests := []struct {
		year, month string
		want        []string
	}{
		{"24", "3", []string{"Year must be four digits"}},
		{"2024", "13", []string{"Month must be between 1 and 12"}},
		{"2024", "0", []string{"Month must be between 1 and 12"}},
		{"abcd", "", []string{"Year must be four digits", "Month must be between 1 and 12"}},
		{"2024", "003", []string{"Month must be between 1 and 12"}},
	}
	for _, tt := range tests {
		_, err := HistoryQuery(tt.year, tt.month)
		assert.Equal(t, tt.want, details(t, err), "%s/%s", tt.year, tt.month)
	}
}
