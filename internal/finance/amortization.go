// Package finance holds the pure calculations behind the dashboard: the
// amortization engine, the cashflow aggregator and the EMI risk score.
//
// Nothing here touches storage; every value is derived from the records passed
// in, so results always reflect the snapshot the caller just loaded.
package finance

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"viveka/internal/core"
)

// CloseByCompleted is the projected close label for a loan with no months left.
const CloseByCompleted = "Completed"

// CloseByLayout renders a projected close date, e.g. "Mar 2027".
const CloseByLayout = "Jan 2006"

// CalculateEMI returns the fixed monthly installment for an annuity loan,
// rounded half-to-even to a whole currency unit. It returns 0 when principal or
// months is not positive, when the rate is not finite, or when the installment
// does not fit in an int64.
func CalculateEMI(principal int64, annualRatePct float64, months int) int64 {
	if principal <= 0 || months <= 0 || math.IsNaN(annualRatePct) || math.IsInf(annualRatePct, 0) {
		return 0
	}

	r := annualRatePct / 12 / 100
	growth := math.Pow(1+r, float64(months))
	if annualRatePct == 0 || growth == 1 {
		return decimal.NewFromInt(principal).
			Div(decimal.NewFromInt(int64(months))).
			RoundBank(0).
			IntPart()
	}

	var emi float64
	if math.IsInf(growth, 1) {
		// Over a long enough term the installment converges on the interest.
		emi = float64(principal) * r
	} else {
		emi = float64(principal) * r * growth / (growth - 1)
	}
	if math.IsNaN(emi) || math.IsInf(emi, 0) || math.Abs(emi) >= math.MaxInt64 {
		return 0
	}
	return decimal.NewFromFloat(emi).RoundBank(0).IntPart()
}

// Figures derives principal, interest, payable, paid, balance and pending
// installments for one loan.
//
// For an interest-only loan the EMI services interest alone, so the payable
// amount is the principal plus every installment. The balance in both cases is
// the total remaining obligation, never below zero.
func Figures(l core.Loan) core.LoanFigures {
	f := core.LoanFigures{Principal: l.Principal}
	installments := l.EMI * int64(l.TotalMonths)
	if l.InterestOnly {
		f.Interest = installments
		f.Payable = l.Principal + installments
	} else {
		f.Payable = installments
		f.Interest = installments - l.Principal
	}
	f.Paid = l.EMI*int64(l.MonthsPaid) + l.ExtraPaid
	f.Balance = max(f.Payable-f.Paid, 0)
	f.Pending = MonthsLeft(l)
	return f
}

// RemainingBalance is Figures(l).Balance.
func RemainingBalance(l core.Loan) int64 {
	return Figures(l).Balance
}

// Progress returns months_paid/total_months clamped to [0,1]; 0 when the term
// is not positive.
func Progress(l core.Loan) float64 {
	if l.TotalMonths <= 0 {
		return 0
	}
	p := float64(l.MonthsPaid) / float64(l.TotalMonths)
	return math.Min(math.Max(p, 0), 1)
}

// ProgressPercent truncates Progress to a whole percentage.
func ProgressPercent(l core.Loan) int {
	return int(Progress(l) * 100)
}

// ProgressBand classifies progress for display.
func ProgressBand(progress float64) string {
	switch {
	case progress >= 0.7:
		return "on-track"
	case progress >= 0.4:
		return "midway"
	default:
		return "early"
	}
}

func MonthsLeft(l core.Loan) int {
	return max(l.TotalMonths-l.MonthsPaid, 0)
}

// ProjectedCloseDate adds monthsLeft calendar months to today. A day that does
// not exist in the target month is clamped to that month's last day, so
// 31 Jan + 1 month is 28 (or 29) Feb. ok is false when monthsLeft <= 0, which
// means the loan is already complete.
func ProjectedCloseDate(monthsLeft int, today time.Time) (closeBy time.Time, ok bool) {
	if monthsLeft <= 0 {
		return time.Time{}, false
	}
	y, m, d := today.Date()
	first := time.Date(y, m+time.Month(monthsLeft), 1, 0, 0, 0, 0, today.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, today.Location()), true
}

// CloseByLabel renders ProjectedCloseDate as "Jan 2006" or CloseByCompleted.
func CloseByLabel(monthsLeft int, today time.Time) string {
	closeBy, ok := ProjectedCloseDate(monthsLeft, today)
	if !ok {
		return CloseByCompleted
	}
	return closeBy.Format(CloseByLayout)
}

// SummarizeLoans sums per-loan figures.
func SummarizeLoans(loans []core.Loan) core.LoanSummary {
	var s core.LoanSummary
	for _, l := range loans {
		f := Figures(l)
		s.Count++
		s.Principal += f.Principal
		s.Interest += f.Interest
		s.Payable += f.Payable
		s.Paid += f.Paid
		s.Balance += f.Balance
		s.Pending += f.Pending
	}
	return s
}

// TotalEMI sums the installment of every loan given.
func TotalEMI(loans []core.Loan) int64 {
	var total int64
	for _, l := range loans {
		total += l.EMI
	}
	return total
}

// SortByMonthsLeft sorts loans closest to completion first. Ties keep their
// stored order.
func SortByMonthsLeft(loans []core.Loan) {
	sort.SliceStable(loans, func(i, j int) bool {
		return MonthsLeft(loans[i]) < MonthsLeft(loans[j])
	})
}

// View builds the progress view of l as of today.
func View(l core.Loan, today time.Time) core.LoanView {
	progress := Progress(l)
	left := MonthsLeft(l)
	return core.LoanView{
		Loan:            l,
		Progress:        progress,
		ProgressPercent: ProgressPercent(l),
		ProgressBand:    ProgressBand(progress),
		MonthsLeft:      left,
		CloseBy:         CloseByLabel(left, today),
		PaidThisMonth:   l.PaidInMonth(today),
		Figures:         Figures(l),
	}
}
