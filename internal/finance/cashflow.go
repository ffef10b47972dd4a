package finance

import (
	"github.com/shopspring/decimal"

	"viveka/internal/core"
)

// Ratio ladders. These are policy constants, not derived values.
const (
	LivingCostComfortable = 0.50
	LivingCostTight       = 0.70

	DebtPressureComfortable = 0.30
	DebtPressureStretching  = 0.45

	SavingsStrong = 0.20
	SavingsWeak   = 0.10

	// FreeCashTight is the free cash after EMIs below which the month is tight.
	FreeCashTight = 10_000
)

func TotalExpenses(p core.CashflowProfile) int64 {
	return p.TotalFixed() + p.TotalVariable()
}

// Surplus is income minus all expenses; it may be negative.
func Surplus(p core.CashflowProfile) int64 {
	return p.MonthlyIncome - TotalExpenses(p)
}

// Ratio returns num/den, or 0 when den is 0.
func Ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Percent returns num/den as a percentage rounded to one decimal place, or 0
// when den is 0.
func Percent(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromInt(num).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(den)).
		Round(1).
		InexactFloat64()
}

func LivingCostLabel(ratio float64) string {
	switch {
	case ratio <= LivingCostComfortable:
		return "comfortable"
	case ratio <= LivingCostTight:
		return "tight"
	default:
		return "high-risk"
	}
}

func DebtPressureLabel(ratio float64) string {
	switch {
	case ratio <= DebtPressureComfortable:
		return "comfortable"
	case ratio <= DebtPressureStretching:
		return "stretching"
	default:
		return "dangerous"
	}
}

func SavingsCapacityLabel(ratio float64) string {
	switch {
	case ratio >= SavingsStrong:
		return "strong"
	case ratio >= SavingsWeak:
		return "weak"
	default:
		return "none"
	}
}

// SurplusStatus is "healthy" for a non-negative surplus and "deficit" otherwise.
func SurplusStatus(surplus int64) string {
	if surplus >= 0 {
		return "healthy"
	}
	return "deficit"
}

// CashflowSignal reads the money left after expenses and EMIs.
func CashflowSignal(freeCashAfterEMI int64) string {
	switch {
	case freeCashAfterEMI < 0:
		return "critical"
	case freeCashAfterEMI < FreeCashTight:
		return "tight"
	default:
		return "stable"
	}
}
