package pricing

import (
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var finite = validation.By(func(value interface{}) error {
	v, ok := value.(float64)
	if !ok {
		return errors.New("must be a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("must be a finite number")
	}
	return nil
})

// nonNegative is applied to every amount, multiplier and percentage.
var nonNegative = []validation.Rule{finite, validation.Min(0.0)}

// Validate checks every item in input order, then the parameters, and returns
// the first violation as a *ValidationError.
func Validate(items []Item, params Parameters) error {
	for i := range items {
		if err := items[i].validate(i); err != nil {
			return err
		}
	}
	return params.validate()
}

func (it Item) validate(index int) error {
	err := validation.ValidateStruct(&it,
		validation.Field(&it.Quantity, nonNegative...),
		validation.Field(&it.UnitCost, nonNegative...),
		validation.Field(&it.RiskFactor, nonNegative...),
	)
	return firstFieldError(index, err, "quantity", "unit_cost", "risk_factor")
}

func (p Parameters) validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.OverheadPct, nonNegative...),
		validation.Field(&p.ContingencyPct, nonNegative...),
		validation.Field(&p.ProfitMarginPct, nonNegative...),
		validation.Field(&p.TaxRatePct, nonNegative...),
	)
	return firstFieldError(-1, err, "overhead_pct", "contingency_pct", "profit_margin_pct", "tax_rate_pct")
}

// firstFieldError picks a single field out of an ozzo error map so that the
// reported violation does not depend on map iteration order.
func firstFieldError(index int, err error, order ...string) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, field := range order {
		if fe, ok := fieldErrs[field]; ok {
			return &ValidationError{Index: index, Field: field, Message: fe.Error()}
		}
	}
	return &ValidationError{Index: index, Message: fieldErrs.Error()}
}
