package finance

import "viveka/internal/core"

const (
	RiskSafe   = "Safe"
	RiskWatch  = "Watch"
	RiskStress = "Stress"
	RiskDanger = "Danger"

	maxRiskScore = 100
	longTenure   = 36
)

// RiskScore rates EMI-driven stress on a 0-100 scale from the active EMI loans
// and the month's income and expenses. It is 0 with no loans or no income.
//
// Points are additive across buckets and capped at 100:
//
//	EMI/income       > 0.45: 40, > 0.30: 25, > 0.20: 10
//	free cash        < 0: 25, < 10,000: 15, < 25,000: 5
//	interest-only    any loan: 15
//	loan count       >= 5: 10, >= 3: 5
//	long tenure      any loan with more than 36 months left: 10
func RiskScore(activeEMIs []core.Loan, income, totalExpenses int64) int {
	if len(activeEMIs) == 0 || income <= 0 {
		return 0
	}

	totalEMI := TotalEMI(activeEMIs)
	freeCash := income - totalExpenses - totalEMI
	score := 0

	switch ratio := Ratio(totalEMI, income); {
	case ratio > 0.45:
		score += 40
	case ratio > 0.30:
		score += 25
	case ratio > 0.20:
		score += 10
	}

	switch {
	case freeCash < 0:
		score += 25
	case freeCash < 10_000:
		score += 15
	case freeCash < 25_000:
		score += 5
	}

	for _, l := range activeEMIs {
		if l.InterestOnly {
			score += 15
			break
		}
	}

	switch n := len(activeEMIs); {
	case n >= 5:
		score += 10
	case n >= 3:
		score += 5
	}

	for _, l := range activeEMIs {
		if l.TotalMonths-l.MonthsPaid > longTenure {
			score += 10
			break
		}
	}

	return min(score, maxRiskScore)
}

// RiskCategoryFor maps a score to its display band.
func RiskCategoryFor(score int) string {
	switch {
	case score <= 25:
		return RiskSafe
	case score <= 50:
		return RiskWatch
	case score <= 75:
		return RiskStress
	default:
		return RiskDanger
	}
}
