package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok, "Update returned %T", next)
	}
	return m
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	space    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	clearAll = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func fillForm(t *testing.T, m Model, amount, term, rate string) Model {
	t.Helper()
	return press(t, m,
		typeText(amount), tab,
		typeText(term), tab,
		typeText(rate), tab,
	)
}

func TestNewModelStartsEmpty(t *testing.T) {
	m := New(zap.NewNop(), "₹")

	assert.Equal(t, calculator.Empty, m.calc.State())
	assert.Equal(t, amountInput, m.focus)
	assert.Equal(t, calculator.Repayment, m.mortgageType)
	assert.Contains(t, m.View(), "Results shown here")
}

func TestSubmitShowsResult(t *testing.T) {
	m := New(zap.NewNop(), "₹")
	m = fillForm(t, m, "300,000", "25", "5.25")
	m = press(t, m, enter)

	require.Equal(t, calculator.Populated, m.calc.State())
	result, ok := m.calc.Result()
	require.True(t, ok)
	assert.Equal(t, "1797.74", result.MonthlyPayment)
	assert.Equal(t, "539322.94", result.TotalPayment)

	view := m.View()
	assert.Contains(t, view, "₹1,797.74")
	assert.Contains(t, view, "₹539,322.94")
	assert.NotContains(t, view, "Results shown here")
}

func TestSubmitWithMissingFieldsKeepsResult(t *testing.T) {
	m := New(zap.NewNop(), "₹")
	m = fillForm(t, m, "100000", "25", "5")
	m = press(t, m, enter)
	require.Equal(t, calculator.Populated, m.calc.State())

	// Wipe the rate and resubmit.
	m = press(t, m, shiftTab)
	require.Equal(t, rateInput, m.focus)
	m.inputs[rateInput].SetValue("")
	m = press(t, m, enter)

	assert.Equal(t, calculator.Populated, m.calc.State())
	assert.Equal(t, "This field is required", m.calc.Form().InterestRate.Error)
	view := m.View()
	assert.Contains(t, view, "This field is required")
	assert.Contains(t, view, "₹584.59")
}

func TestToggleMortgageType(t *testing.T) {
	m := New(zap.NewNop(), "£")

	// Space on a text field is typed, not toggled.
	m = press(t, m, space)
	assert.Equal(t, calculator.Repayment, m.mortgageType)

	m = press(t, m, shiftTab)
	require.Equal(t, typeSelector, m.focus)
	m = press(t, m, space)
	assert.Equal(t, calculator.InterestOnly, m.mortgageType)
	m = press(t, m, space)
	assert.Equal(t, calculator.Repayment, m.mortgageType)
}

func TestInterestOnlySubmission(t *testing.T) {
	m := New(zap.NewNop(), "£")
	m = fillForm(t, m, "100000", "25", "5")
	require.Equal(t, typeSelector, m.focus)
	m = press(t, m, space, enter)

	assert.Equal(t, calculator.InterestOnly, m.mortgageType)
	assert.Equal(t, string(calculator.InterestOnly), m.calc.Form().MortgageType.Value)
	assert.Contains(t, m.View(), "£584.59")
}

func TestClearResetsEverything(t *testing.T) {
	m := New(zap.NewNop(), "₹")
	m = fillForm(t, m, "300000", "25", "5.25")
	m = press(t, m, space, enter, clearAll)

	assert.Equal(t, calculator.Empty, m.calc.State())
	assert.Equal(t, amountInput, m.focus)
	assert.Equal(t, calculator.Repayment, m.mortgageType)
	for i, input := range m.inputs {
		assert.Empty(t, input.Value(), "input %d", i)
	}
	assert.Contains(t, m.View(), "Results shown here")
}

func TestFocusWraps(t *testing.T) {
	m := New(zap.NewNop(), "₹")

	for i := 0; i < focusCount; i++ {
		m = press(t, m, tab)
	}
	assert.Equal(t, amountInput, m.focus)

	m = press(t, m, shiftTab)
	assert.Equal(t, typeSelector, m.focus)
}

func TestQuit(t *testing.T) {
	m := New(zap.NewNop(), "₹")

	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}
