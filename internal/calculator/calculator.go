// Package calculator implements the mortgage repayment calculator: input
// validation, the repayment computation, and the Empty/Populated result state
// shared by every presentation surface.
package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/loans"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"go.uber.org/zap"
)

// MortgageType is the kind of mortgage selected on the form.
type MortgageType string

const (
	Repayment    MortgageType = "repayment"
	InterestOnly MortgageType = "interestOnly"
)

// ParseMortgageType accepts the canonical names plus common spellings such as
// "interest-only". An empty value selects Repayment.
func ParseMortgageType(value string) (MortgageType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)
	switch normalized {
	case "", "repayment":
		return Repayment, nil
	case "interestonly":
		return InterestOnly, nil
	}
	return "", fmt.Errorf("unknown mortgage type %q", value)
}

// Label returns the display name of the mortgage type.
func (m MortgageType) Label() string {
	switch m {
	case InterestOnly:
		return "Interest Only"
	default:
		return "Repayment"
	}
}

// LoanInput is a validated set of loan parameters.
type LoanInput struct {
	Amount       float64
	TermYears    int
	InterestRate float64 // annual, percent
	MortgageType MortgageType
}

// RepaymentResult holds both amounts as fixed-point strings with two
// fraction digits.
type RepaymentResult struct {
	MonthlyPayment string `json:"monthlyPayment" yaml:"monthlyPayment"`
	TotalPayment   string `json:"totalPayment" yaml:"totalPayment"`
}

// ComputeRepayment applies the amortizing-loan payment formula. The mortgage
// type is accepted but both types are computed the same way. A zero rate is
// repaid in equal principal instalments.
func ComputeRepayment(input LoanInput) (RepaymentResult, error) {
	if input.TermYears <= 0 {
		return RepaymentResult{}, InvalidFieldError(FieldTerm, "Term must be at least one year")
	}

	terms := loans.Terms{
		Principal:          input.Amount,
		AnnualInterestRate: input.InterestRate,
		TermYears:          input.TermYears,
	}
	monthly := terms.MonthlyPayment()
	total := terms.TotalPayment()
	if !mathutil.IsFinite(monthly) || !mathutil.IsFinite(total) {
		return RepaymentResult{}, ErrIndeterminate
	}

	return RepaymentResult{
		MonthlyPayment: mathutil.FixedCurrency(monthly),
		TotalPayment:   mathutil.FixedCurrency(total),
	}, nil
}

// State is whether the calculator currently holds a result.
type State int

const (
	Empty State = iota
	Populated
)

func (s State) String() string {
	if s == Populated {
		return "populated"
	}
	return "empty"
}

// Calculator owns one form and at most one result. It is not safe for
// concurrent use.
type Calculator struct {
	logger *zap.Logger
	form   Form
	result *RepaymentResult
}

// New returns a calculator in the Empty state.
func New(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, form: NewForm()}
}

// Submit validates the form and, when every field is acceptable, replaces the
// held result. On failure the form keeps its per-field errors and the previous
// result, if any, is left in place.
func (c *Calculator) Submit(form Form) error {
	input, err := form.Validate()
	c.form = form
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			c.logger.Debug("submission rejected",
				zap.String("op", "calculator.Submit"),
				zap.Strings("fields", verrs.Fields()),
				zap.Stringer("state", c.State()),
			)
		}
		return err
	}

	result, err := ComputeRepayment(input)
	if err != nil {
		c.logger.Warn("failed to compute repayment",
			zap.String("op", "calculator.Submit"),
			zap.Error(err),
		)
		return err
	}

	c.result = &result
	c.logger.Debug("repayment computed",
		zap.String("op", "calculator.Submit"),
		zap.Float64("amount", input.Amount),
		zap.Int("termYears", input.TermYears),
		zap.Float64("interestRate", input.InterestRate),
		zap.String("mortgageType", string(input.MortgageType)),
		zap.String("monthlyPayment", result.MonthlyPayment),
		zap.String("totalPayment", result.TotalPayment),
	)
	return nil
}

// Clear discards the result and resets the form.
func (c *Calculator) Clear() {
	c.form = NewForm()
	c.result = nil
	c.logger.Debug("calculator cleared", zap.String("op", "calculator.Clear"))
}

// Form returns a copy of the current form, including any field errors.
func (c *Calculator) Form() Form {
	return c.form
}

// Result returns the held result and whether there is one.
func (c *Calculator) Result() (RepaymentResult, bool) {
	if c.result == nil {
		return RepaymentResult{}, false
	}
	return *c.result, true
}

// State reports Empty or Populated.
func (c *Calculator) State() State {
	if c.result == nil {
		return Empty
	}
	return Populated
}
