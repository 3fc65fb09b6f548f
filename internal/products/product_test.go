package products

import (
	"encoding/json"
	"testing"

	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshalAcceptsStringsAndNumbers(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "title": "Jar", "price": 10, "co2Saved": 2.5}`), &p))
	assert.Equal(t, ID("1"), p.ID)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(10)))
	assert.True(t, p.CO2Saved.Equal(decimal.RequireFromString("2.5")))

	require.NoError(t, json.Unmarshal([]byte(`{"id": " sku-9 ", "title": "Mug", "price": "4.20"}`), &p))
	assert.Equal(t, ID("sku-9"), p.ID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("4.2")))
}

func TestIDUnmarshalRejectsObjects(t *testing.T) {
	var p Product
	err := json.Unmarshal([]byte(`{"id": {"nested": true}}`), &p)
	require.Error(t, err)
}

func TestMissingCO2DefaultsToZero(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id": 7, "title": "Lamp", "price": 12}`), &p))
	assert.True(t, p.CO2Saved.IsZero())
}

func TestValidate(t *testing.T) {
	valid := Product{ID: "1", Title: "Jar", Price: decimal.NewFromInt(3)}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		product Product
	}{
		{name: "empty id", product: Product{ID: "  ", Title: "x"}},
		{name: "negative price", product: Product{ID: "1", Price: decimal.NewFromInt(-1)}},
		{name: "negative co2", product: Product{ID: "1", CO2Saved: decimal.NewFromInt(-2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}
