package finance

import (
	"testing"

	"viveka/internal/core"
)

func emiLoan(emi int64, total, paid int) core.Loan {
	return core.Loan{Type: core.LoanTypeEMI, Status: core.StatusActive, EMI: emi, TotalMonths: total, MonthsPaid: paid}
}

func TestRiskScore(t *testing.T) {
	interestOnly := emiLoan(1000, 12, 0)
	interestOnly.InterestOnly = true

	cases := []struct {
		name     string
		loans    []core.Loan
		income   int64
		expenses int64
		want     int
	}{
		{"no loans", nil, 50000, 20000, 0},
		{"no income", []core.Loan{emiLoan(1000, 12, 0)}, 0, 0, 0},
		{"negative income", []core.Loan{emiLoan(1000, 12, 0)}, -10, 0, 0},
		{"two loans at thirty percent", []core.Loan{emiLoan(10000, 12, 0), emiLoan(5000, 12, 0)}, 50000, 20000, 15},
		{"light load", []core.Loan{emiLoan(1000, 12, 0)}, 100000, 20000, 0},
		{"ratio over thirty", []core.Loan{emiLoan(16000, 12, 0)}, 50000, 0, 25},
		{"ratio over forty five, deficit", []core.Loan{emiLoan(30000, 12, 0)}, 50000, 30000, 65},
		{"interest only flat", []core.Loan{interestOnly, interestOnly}, 100000, 0, 15},
		{"three loans", []core.Loan{emiLoan(100, 12, 0), emiLoan(100, 12, 0), emiLoan(100, 12, 0)}, 100000, 0, 5},
		{"long tenure once", []core.Loan{emiLoan(100, 60, 0), emiLoan(100, 60, 0)}, 100000, 0, 10},
		{"tenure exactly 36 left", []core.Loan{emiLoan(100, 40, 4)}, 100000, 0, 0},
		{
			"every bucket",
			[]core.Loan{emiLoan(20000, 60, 0), interestOnly, emiLoan(100, 12, 0), emiLoan(100, 12, 0), emiLoan(100, 12, 0)},
			40000, 30000, 100,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RiskScore(tc.loans, tc.income, tc.expenses); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRiskScoreMonotonicInEMIRatio(t *testing.T) {
	prev := -1
	for emi := int64(0); emi <= 80000; emi += 250 {
		loans := []core.Loan{emiLoan(emi, 24, 0), emiLoan(2000, 48, 0)}
		got := RiskScore(loans, 50000, 20000)
		if got < 0 || got > 100 {
			t.Fatalf("score %d out of range at emi %d", got, emi)
		}
		if got < prev {
			t.Fatalf("score fell from %d to %d at emi %d", prev, got, emi)
		}
		prev = got
	}
}

func TestRiskCategoryFor(t *testing.T) {
	cases := map[int]string{0: RiskSafe, 25: RiskSafe, 26: RiskWatch, 50: RiskWatch, 51: RiskStress, 75: RiskStress, 76: RiskDanger, 100: RiskDanger}
	for score, want := range cases {
		if got := RiskCategoryFor(score); got != want {
			t.Errorf("RiskCategoryFor(%d) = %q, want %q", score, got, want)
		}
	}
}
