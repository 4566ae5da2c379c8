package pricing

import (
	"errors"
	"testing"
)

func TestDecodeItems(t *testing.T) {
	data := []byte(`[
		{"description": "Item A", "quantity": 10, "unit_cost": 5, "risk_factor": 1.1},
		{"description": "Cement", "quantity": 2, "base_unit_cost": 90, "unit": "bag", "category": "materials"},
		{"description": "Crane hire", "quantity": 1, "unit_cost": 4000, "risk_level": "HIGH", "notes": "two days"}
	]`)

	items, err := DecodeItems(data)
	if err != nil {
		t.Fatalf("DecodeItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	nearlyEqual(t, "items[0].RiskFactor", items[0].RiskFactor, 1.1)

	if items[1].UnitCost != 90 || items[1].RiskFactor != DefaultRiskFactor {
		t.Fatalf("alias or default risk not applied: %+v", items[1])
	}
	if items[1].Unit != "bag" || items[1].Category != "materials" {
		t.Fatalf("display fields lost: %+v", items[1])
	}

	nearlyEqual(t, "items[2].RiskFactor", items[2].RiskFactor, 1.10)
	if items[2].Notes != "two days" {
		t.Fatalf("notes = %q", items[2].Notes)
	}
}

func TestDecodeItems_Empty(t *testing.T) {
	items, err := DecodeItems([]byte(`[]`))
	if err != nil {
		t.Fatalf("DecodeItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
}

func TestDecodeItems_Errors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantIndex int
		wantField string
	}{
		{"null", `null`, -1, "pricing_items"},
		{"not an array", `{"description": "x"}`, -1, "pricing_items"},
		{"missing description", `[{"quantity": 1, "unit_cost": 1}]`, 0, "description"},
		{"missing quantity", `[{"description": "a", "quantity": 1, "unit_cost": 1}, {"description": "b", "unit_cost": 1}]`, 1, "quantity"},
		{"missing unit cost", `[{"description": "a", "quantity": 1}]`, 0, "unit_cost"},
		{"null unit cost", `[{"description": "a", "quantity": 1, "unit_cost": null}]`, 0, "unit_cost"},
		{"string quantity", `[{"description": "a", "quantity": "ten", "unit_cost": 1}]`, 0, "quantity"},
		{"negative cost", `[{"description": "a", "quantity": 1, "unit_cost": -3}]`, 0, "unit_cost"},
		{"unknown risk level", `[{"description": "a", "quantity": 1, "unit_cost": 1, "risk_level": "extreme"}]`, 0, "risk_level"},
		{"numeric notes", `[{"description": "a", "quantity": 1, "unit_cost": 1, "notes": 4}]`, 0, "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeItems([]byte(tt.data))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Index != tt.wantIndex || ve.Field != tt.wantField {
				t.Fatalf("got index=%d field=%q, want index=%d field=%q", ve.Index, ve.Field, tt.wantIndex, tt.wantField)
			}
		})
	}
}

func TestDecodeItems_ExplicitRiskFactorWinsOverLevel(t *testing.T) {
	items, err := DecodeItems([]byte(`[{"description": "a", "quantity": 1, "unit_cost": 1, "risk_factor": 1.3, "risk_level": "low"}]`))
	if err != nil {
		t.Fatalf("DecodeItems: %v", err)
	}
	nearlyEqual(t, "RiskFactor", items[0].RiskFactor, 1.3)
}
