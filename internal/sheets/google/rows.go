package google

import (
	"fmt"

	"viveka/internal/core"
	"viveka/internal/finance"
)

var loanHeader = []any{
	"Loan No", "Lender", "Rate (%)", "Principal", "Interest", "Payable",
	"EMI", "Paid EMIs", "Pending", "Extra", "Paid", "Balance",
}

func lastColumn() string {
	return string(rune('A' + len(loanHeader) - 1))
}

// LoanRows renders the unarchived active EMI loans as a header row, one row
// per loan in stored order, and a TOTAL row.
func LoanRows(loans []core.Loan) [][]any {
	active := finance.VisibleActiveEMIs(loans)
	rows := make([][]any, 0, len(active)+2)
	rows = append(rows, loanHeader)

	for _, l := range active {
		f := finance.Figures(l)
		rows = append(rows, []any{
			l.LoanNo,
			l.Lender,
			fmt.Sprintf("%.2f", l.InterestRate),
			f.Principal,
			f.Interest,
			f.Payable,
			l.EMI,
			fmt.Sprintf("%d/%d", l.MonthsPaid, l.TotalMonths),
			f.Pending,
			l.ExtraPaid,
			f.Paid,
			f.Balance,
		})
	}

	s := finance.SummarizeLoans(active)
	rows = append(rows, []any{
		"TOTAL", "", "",
		s.Principal, s.Interest, s.Payable,
		finance.TotalEMI(active), "", s.Pending,
		totalExtra(active), s.Paid, s.Balance,
	})
	return rows
}

func totalExtra(loans []core.Loan) int64 {
	var total int64
	for _, l := range loans {
		total += l.ExtraPaid
	}
	return total
}
