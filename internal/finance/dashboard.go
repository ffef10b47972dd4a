package finance

import (
	"time"

	"viveka/internal/core"
)

// Summarize combines the cashflow profile and the loan set into the dashboard
// view. Totals and the risk score run over ActiveEMIs.
func Summarize(p core.CashflowProfile, loans []core.Loan) core.DashboardSummary {
	income := p.MonthlyIncome
	expenses := TotalExpenses(p)
	surplus := income - expenses
	active := ActiveEMIs(loans)
	totalEMI := TotalEMI(active)
	freeCash := surplus - totalEMI
	score := RiskScore(active, income, expenses)

	return core.DashboardSummary{
		Income:             income,
		FixedExpenses:      p.TotalFixed(),
		VariableExpenses:   p.TotalVariable(),
		TotalExpenses:      expenses,
		Surplus:            surplus,
		LivingCostPct:      Percent(expenses, income),
		DebtPressurePct:    Percent(totalEMI, income),
		SavingsCapacityPct: Percent(surplus, income),
		ActiveEMICount:     len(active),
		TotalEMI:           totalEMI,
		FreeCashAfterEMI:   freeCash,
		RiskScore:          score,

		RiskCategory:         RiskCategoryFor(score),
		LivingCostLabel:      LivingCostLabel(Ratio(expenses, income)),
		DebtPressureLabel:    DebtPressureLabel(Ratio(totalEMI, income)),
		SavingsCapacityLabel: SavingsCapacityLabel(Ratio(surplus, income)),
		SurplusStatus:        SurplusStatus(surplus),
		CashflowSignal:       CashflowSignal(freeCash),
		NextClosing:          NextClosingLoan(loans),
	}
}

// NextClosingLoan picks the unfinished, unarchived active EMI loan with the
// fewest months left. Ties go to the loan stored first. It returns nil when no
// loan qualifies.
func NextClosingLoan(loans []core.Loan) *core.NextClosing {
	var next *core.NextClosing
	for _, l := range VisibleActiveEMIs(loans) {
		left := MonthsLeft(l)
		if left == 0 {
			continue
		}
		if next == nil || left < next.MonthsLeft {
			next = &core.NextClosing{
				LoanID:     l.ID,
				LoanNo:     l.LoanNo,
				Lender:     l.Lender,
				MonthsLeft: left,
				FreesEMI:   l.EMI,
			}
		}
	}
	return next
}

// Overview lists the unarchived active EMI loans closest to completion first,
// each with its progress as of today, and their totals.
func Overview(loans []core.Loan, today time.Time) core.LoanOverview {
	active := VisibleActiveEMIs(loans)
	SortByMonthsLeft(active)

	views := make([]core.LoanView, len(active))
	for i, l := range active {
		views[i] = View(l, today)
	}
	return core.LoanOverview{
		AsOf:    today,
		Loans:   views,
		Summary: SummarizeLoans(active),
	}
}
