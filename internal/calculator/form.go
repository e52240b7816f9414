package calculator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Form field names, shared by the HTML form, the JSON API and the terminal UI.
const (
	FieldAmount       = "amount"
	FieldTerm         = "term"
	FieldInterestRate = "interestRate"
	FieldMortgageType = "mortgageType"
)

// Field is one input of the form: its raw value as typed and the error shown
// next to it, if any.
type Field struct {
	Name  string
	Label string
	Value string
	Error string
}

// Form holds the raw calculator inputs.
type Form struct {
	Amount       Field
	Term         Field
	InterestRate Field
	MortgageType Field
}

// NewForm returns an empty form with the default mortgage type selected.
func NewForm() Form {
	return Form{
		Amount:       Field{Name: FieldAmount, Label: "Mortgage Amount"},
		Term:         Field{Name: FieldTerm, Label: "Mortgage Term"},
		InterestRate: Field{Name: FieldInterestRate, Label: "Interest Rate"},
		MortgageType: Field{Name: FieldMortgageType, Label: "Mortgage Type", Value: string(Repayment)},
	}
}

// NewFormFromValues builds a form from a value lookup such as url.Values.Get.
// A missing mortgage type keeps the default.
func NewFormFromValues(get func(string) string) Form {
	form := NewForm()
	form.Amount.Value = get(FieldAmount)
	form.Term.Value = get(FieldTerm)
	form.InterestRate.Value = get(FieldInterestRate)
	if mortgageType := get(FieldMortgageType); mortgageType != "" {
		form.MortgageType.Value = mortgageType
	}
	return form
}

// Fields returns pointers to the form's fields in display order.
func (f *Form) Fields() []*Field {
	return []*Field{&f.Amount, &f.Term, &f.InterestRate, &f.MortgageType}
}

// HasErrors reports whether any field carries an error.
func (f Form) HasErrors() bool {
	for _, field := range f.Fields() {
		if field.Error != "" {
			return true
		}
	}
	return false
}

// Validate parses every field, replacing each field's error with the outcome
// of this run. It returns the parsed input, or the collected field errors.
func (f *Form) Validate() (LoanInput, error) {
	var input LoanInput
	var errs ValidationErrors

	for _, field := range f.Fields() {
		field.Error = ""
	}

	record := func(field *Field, fe *FieldError) {
		if fe != nil {
			field.Error = fe.Message
			errs = append(errs, fe)
		}
	}

	var fe *FieldError
	input.Amount, fe = parseAmount(f.Amount.Value)
	record(&f.Amount, fe)

	input.TermYears, fe = parseTerm(f.Term.Value)
	record(&f.Term, fe)

	input.InterestRate, fe = parseInterestRate(f.InterestRate.Value)
	record(&f.InterestRate, fe)

	mortgageType, err := ParseMortgageType(f.MortgageType.Value)
	if err != nil {
		record(&f.MortgageType, InvalidFieldError(FieldMortgageType, "Select repayment or interest only"))
	} else {
		input.MortgageType = mortgageType
		f.MortgageType.Value = string(mortgageType)
	}

	if len(errs) > 0 {
		return LoanInput{}, errs
	}
	return input, nil
}

// Errors returns the current field errors keyed by field name.
func (f Form) Errors() map[string]string {
	out := make(map[string]string)
	for _, field := range f.Fields() {
		if field.Error != "" {
			out[field.Name] = field.Error
		}
	}
	return out
}

func parseAmount(raw string) (float64, *FieldError) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimLeftFunc(cleaned, func(r rune) bool {
		return unicode.Is(unicode.Sc, r)
	})
	if cleaned == "" {
		return 0, MissingFieldError(FieldAmount)
	}

	amount, err := parseDecimal(cleaned)
	if err != nil {
		return 0, InvalidFieldError(FieldAmount, "Enter a valid amount")
	}
	if !amount.IsPositive() {
		return 0, InvalidFieldError(FieldAmount, "Amount must be greater than zero")
	}
	if amount.GreaterThan(decimal.NewFromFloat(constants.MaxLoanAmount)) {
		return 0, InvalidFieldError(FieldAmount, fmt.Sprintf("Amount must not exceed %.0f", constants.MaxLoanAmount))
	}
	return amount.InexactFloat64(), nil
}

func parseTerm(raw string) (int, *FieldError) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, MissingFieldError(FieldTerm)
	}

	term, err := parseDecimal(cleaned)
	if err != nil || !term.IsInteger() {
		return 0, InvalidFieldError(FieldTerm, "Enter a whole number of years")
	}
	if !term.IsPositive() {
		return 0, InvalidFieldError(FieldTerm, "Term must be at least one year")
	}
	if term.GreaterThan(decimal.NewFromInt(constants.MaxTermYears)) {
		return 0, InvalidFieldError(FieldTerm, fmt.Sprintf("Term must not exceed %d years", constants.MaxTermYears))
	}
	return int(term.IntPart()), nil
}

func parseInterestRate(raw string) (float64, *FieldError) {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if cleaned == "" {
		return 0, MissingFieldError(FieldInterestRate)
	}

	rate, err := parseDecimal(cleaned)
	if err != nil {
		return 0, InvalidFieldError(FieldInterestRate, "Enter a valid rate")
	}
	if rate.IsNegative() {
		return 0, InvalidFieldError(FieldInterestRate, "Rate must not be negative")
	}
	if rate.GreaterThan(decimal.NewFromFloat(constants.MaxInterestRate)) {
		return 0, InvalidFieldError(FieldInterestRate, fmt.Sprintf("Rate must not exceed %.0f%%", constants.MaxInterestRate))
	}
	return rate.InexactFloat64(), nil
}

// parseDecimal parses a number and refuses exponents outside a small window.
// Comparing or rescaling a decimal costs time proportional to its exponent.
func parseDecimal(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if exp := value.Exponent(); exp < constants.MinInputExponent || exp > constants.MaxInputExponent {
		return decimal.Decimal{}, fmt.Errorf("exponent %d out of range", exp)
	}
	return value, nil
}
