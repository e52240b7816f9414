// Package loans provides common loan processing utilities.
package loans

import (
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

// Terms holds the parameters of an amortizing loan.
type Terms struct {
	Principal          float64
	AnnualInterestRate float64 // percent, e.g. 5.25
	TermYears          int
}

// NumberOfPayments returns the number of monthly payments over the term.
func NumberOfPayments(termYears int) int {
	return termYears * constants.MonthsPerYear
}

// MonthlyRate converts an annual percentage rate into a periodic monthly rate.
func MonthlyRate(annualInterestRate float64) float64 {
	return annualInterestRate / constants.PercentageMultiplier / constants.MonthsPerYear
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return math.NaN()
	}

	periodicInterestRate := MonthlyRate(annualInterestRate)
	if periodicInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	// 1 - (1+r)^-n, kept accurate for rates so small that 1+r rounds to 1.
	discountFactor := -math.Expm1(-float64(termMonths) * math.Log1p(periodicInterestRate))
	return principal * periodicInterestRate / discountFactor
}

// CalculateTotalPayment returns the sum of all payments over the term given
// an unrounded monthly payment.
func CalculateTotalPayment(monthlyPayment float64, termMonths int) float64 {
	return monthlyPayment * float64(termMonths)
}

// NumberOfPayments returns the number of monthly payments for the terms.
func (t Terms) NumberOfPayments() int {
	return NumberOfPayments(t.TermYears)
}

// MonthlyPayment returns the unrounded monthly payment for the terms.
func (t Terms) MonthlyPayment() float64 {
	return CalculateMonthlyPayment(t.Principal, t.AnnualInterestRate, t.NumberOfPayments())
}

// TotalPayment returns the unrounded total repaid over the terms.
func (t Terms) TotalPayment() float64 {
	return CalculateTotalPayment(t.MonthlyPayment(), t.NumberOfPayments())
}
