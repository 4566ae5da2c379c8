package pricing

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Risk levels accepted in place of an explicit risk_factor.
var riskLevelFactors = map[string]float64{
	"low":    1.00,
	"medium": 1.05,
	"high":   1.10,
}

// RiskLevelFactor maps a risk level of low, medium or high, in any case, onto
// its risk factor.
func RiskLevelFactor(level string) (float64, bool) {
	f, ok := riskLevelFactors[strings.ToLower(strings.TrimSpace(level))]
	return f, ok
}

// DecodeItems decodes a JSON array of line items shaped as
// {description, quantity, unit_cost, risk_factor}. description, quantity and
// unit_cost are required; risk_factor defaults to 1.0, or is derived from a
// risk_level of low, medium or high when given. base_unit_cost is accepted in
// place of unit_cost.
func DecodeItems(data []byte) ([]Item, error) {
	if isNull(data) {
		return nil, paramError("pricing_items", "is required")
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, paramError("pricing_items", "must be an array of objects")
	}

	items := make([]Item, 0, len(raw))
	for i, fields := range raw {
		item, err := decodeItem(i, fields)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeItem(index int, fields map[string]json.RawMessage) (Item, error) {
	var item Item
	var err error

	if item.Description, err = requiredString(index, fields, "description"); err != nil {
		return Item{}, err
	}
	if item.Quantity, err = requiredNumber(index, fields, "quantity"); err != nil {
		return Item{}, err
	}

	costField := "unit_cost"
	if _, ok := present(fields, costField); !ok {
		if _, alias := present(fields, "base_unit_cost"); alias {
			costField = "base_unit_cost"
		}
	}
	if item.UnitCost, err = requiredNumber(index, fields, costField); err != nil {
		return Item{}, err
	}

	if item.RiskFactor, err = riskFactor(index, fields); err != nil {
		return Item{}, err
	}

	display := []struct {
		key string
		dst *string
	}{
		{"unit", &item.Unit},
		{"category", &item.Category},
		{"notes", &item.Notes},
	}
	for _, d := range display {
		if *d.dst, err = optionalString(index, fields, d.key); err != nil {
			return Item{}, err
		}
	}

	if err := item.validate(index); err != nil {
		return Item{}, err
	}
	return item, nil
}

func riskFactor(index int, fields map[string]json.RawMessage) (float64, error) {
	if _, ok := present(fields, "risk_factor"); ok {
		return requiredNumber(index, fields, "risk_factor")
	}

	level, err := optionalString(index, fields, "risk_level")
	if err != nil {
		return 0, err
	}
	if level == "" {
		return DefaultRiskFactor, nil
	}

	factor, ok := RiskLevelFactor(level)
	if !ok {
		return 0, &ValidationError{Index: index, Field: "risk_level", Message: "must be one of low, medium, high"}
	}
	return factor, nil
}

func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := fields[key]
	if !ok || isNull(v) {
		return nil, false
	}
	return v, true
}

func isNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func requiredNumber(index int, fields map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := present(fields, key)
	if !ok {
		return 0, &ValidationError{Index: index, Field: key, Message: "is required"}
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, &ValidationError{Index: index, Field: key, Message: "must be a number"}
	}
	return v, nil
}

func requiredString(index int, fields map[string]json.RawMessage, key string) (string, error) {
	if _, ok := present(fields, key); !ok {
		return "", &ValidationError{Index: index, Field: key, Message: "is required"}
	}
	return optionalString(index, fields, key)
}

func optionalString(index int, fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := present(fields, key)
	if !ok {
		return "", nil
	}

	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", &ValidationError{Index: index, Field: key, Message: "must be a string"}
	}
	return v, nil
}
