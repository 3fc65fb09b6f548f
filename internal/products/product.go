package products

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// ID identifies a listing. Catalog payloads carry it either as a JSON string or
// a JSON number; both decode to the same ID.
type ID string

// IsZero reports whether the id is empty after trimming.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts `"42"`, `42` and `null`.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Product is the read-only listing snapshot supplied by the catalog.
type Product struct {
	ID          ID              `json:"id" validate:"required"`
	Title       string          `json:"title" validate:"required,max=200"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty" validate:"omitempty,max=2048"`
	CO2Saved    decimal.Decimal `json:"co2Saved"`
	Seller      string          `json:"seller,omitempty" validate:"omitempty,max=200"`
	Category    string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Condition   string          `json:"condition,omitempty" validate:"omitempty,max=100"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=4000"`
}

// Validate checks the invariants that struct tags cannot express.
func (p Product) Validate() error {
	if p.ID.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if p.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price must be non-negative").
			WithDetails(map[string]any{"id": p.ID, "price": p.Price.String()})
	}
	if p.CO2Saved.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product co2Saved must be non-negative").
			WithDetails(map[string]any{"id": p.ID, "co2Saved": p.CO2Saved.String()})
	}
	return nil
}
