package finance

import "viveka/internal/core"

// Loan list filters.
const (
	FilterActive     = "active"
	FilterArchived   = "archived"
	FilterAll        = "all"
	FilterSettlement = "settlement"
	FilterClosed     = "closed"
)

// ValidFilter reports whether name is a known loan list filter.
func ValidFilter(name string) bool {
	switch name {
	case FilterActive, FilterArchived, FilterAll, FilterSettlement, FilterClosed:
		return true
	}
	return false
}

func selectLoans(loans []core.Loan, keep func(core.Loan) bool) []core.Loan {
	out := make([]core.Loan, 0, len(loans))
	for _, l := range loans {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// ActiveEMIs returns every EMI loan with ACTIVE status, archived or not. This
// is the set the dashboard totals and the risk score are computed over.
func ActiveEMIs(loans []core.Loan) []core.Loan {
	return selectLoans(loans, func(l core.Loan) bool {
		return l.Type == core.LoanTypeEMI && l.Status == core.StatusActive
	})
}

// VisibleActiveEMIs is ActiveEMIs without archived loans.
func VisibleActiveEMIs(loans []core.Loan) []core.Loan {
	return selectLoans(loans, func(l core.Loan) bool {
		return l.Type == core.LoanTypeEMI && l.Status == core.StatusActive && !l.Archived
	})
}

func ArchivedLoans(loans []core.Loan) []core.Loan {
	return selectLoans(loans, func(l core.Loan) bool { return l.Archived })
}

func ActiveSettlements(loans []core.Loan) []core.Loan {
	return selectLoans(loans, func(l core.Loan) bool {
		return l.Type == core.LoanTypeSettlement && l.Status == core.StatusActive
	})
}

func ClosedLoans(loans []core.Loan) []core.Loan {
	return selectLoans(loans, func(l core.Loan) bool { return l.Status == core.StatusClosed })
}

// FilterLoans applies a named filter. The active list is ordered by months
// left, closest to completion first; the others keep stored order.
func FilterLoans(loans []core.Loan, filter string) []core.Loan {
	switch filter {
	case FilterActive:
		out := VisibleActiveEMIs(loans)
		SortByMonthsLeft(out)
		return out
	case FilterArchived:
		return ArchivedLoans(loans)
	case FilterSettlement:
		return ActiveSettlements(loans)
	case FilterClosed:
		return ClosedLoans(loans)
	default:
		return selectLoans(loans, func(core.Loan) bool { return true })
	}
}
