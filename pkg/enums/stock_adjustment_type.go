package enums

import "fmt"

// StockAdjustmentType describes how a manual stock adjustment is applied.
// ADD and SUBTRACT are relative; SET overwrites the on-hand quantity.
type StockAdjustmentType string

const (
	StockAdjustmentAdd      StockAdjustmentType = "ADD"
	StockAdjustmentSubtract StockAdjustmentType = "SUBTRACT"
	StockAdjustmentSet      StockAdjustmentType = "SET"
)

var validStockAdjustmentTypes = []StockAdjustmentType{
	StockAdjustmentAdd,
	StockAdjustmentSubtract,
	StockAdjustmentSet,
}

// String implements fmt.Stringer.
func (t StockAdjustmentType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known StockAdjustmentType.
func (t StockAdjustmentType) IsValid() bool {
	for _, candidate := range validStockAdjustmentTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockAdjustmentType converts raw input into a StockAdjustmentType.
func ParseStockAdjustmentType(value string) (StockAdjustmentType, error) {
	for _, candidate := range validStockAdjustmentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock adjustment type %q", value)
}
