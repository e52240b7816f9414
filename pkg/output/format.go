// Package output provides utilities for formatting and displaying repayment results.
package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, input calculator.LoanInput, result calculator.RepaymentResult, symbol string) {
	p := message.NewPrinter(language.English)
	fmt.Fprintf(w, "--- Mortgage repayments ---\n")
	fmt.Fprintf(w, "Field              | Value\n")
	fmt.Fprintf(w, "_____              | _____\n")
	_, _ = p.Fprintf(w, "Mortgage amount    | %s%.2f\n", symbol, input.Amount)
	fmt.Fprintf(w, "Mortgage term      | %d years\n", input.TermYears)
	fmt.Fprintf(w, "Interest rate      | %s%%\n", strconv.FormatFloat(input.InterestRate, 'f', -1, 64))
	fmt.Fprintf(w, "Mortgage type      | %s\n", input.MortgageType.Label())
	fmt.Fprintf(w, "Monthly repayments | %s\n", format.FixedCurrency(symbol, result.MonthlyPayment))
	fmt.Fprintf(w, "Total repayable    | %s\n", format.FixedCurrency(symbol, result.TotalPayment))
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, input calculator.LoanInput, result calculator.RepaymentResult) {
	fmt.Fprintf(w, `"amount","term","interestRate","mortgageType","monthlyPayment","totalPayment"`)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, `"%.2f","%d","%s","%s","%s","%s"`,
		input.Amount,
		input.TermYears,
		strconv.FormatFloat(input.InterestRate, 'f', -1, 64),
		input.MortgageType,
		result.MonthlyPayment,
		result.TotalPayment,
	)
	fmt.Fprintf(w, "\n")
}
