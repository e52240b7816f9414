// Package tui is the terminal front end of the mortgage calculator.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"go.uber.org/zap"
)

const (
	amountInput = iota
	termInput
	rateInput
	typeSelector
	focusCount
)

type keyMap struct {
	Submit key.Binding
	Clear  key.Binding
	Next   key.Binding
	Prev   key.Binding
	Toggle key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "calculate")),
		Clear:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "clear all")),
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
		Toggle: key.NewBinding(key.WithKeys(" ", "left", "right"), key.WithHelp("space", "mortgage type")),
		Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Next, k.Toggle, k.Clear, k.Quit}
}

// Model is the Bubble Tea model of the calculator screen.
type Model struct {
	calc         *calculator.Calculator
	inputs       []textinput.Model
	mortgageType calculator.MortgageType
	focus        int
	symbol       string

	keys keyMap
	help help.Model
}

// New returns a model with an empty form and the amount field focused.
func New(logger *zap.Logger, symbol string) Model {
	m := Model{
		calc:   calculator.New(logger),
		symbol: symbol,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
	m.inputs = make([]textinput.Model, typeSelector)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 32
		m.inputs[i] = ti
	}
	m.inputs[amountInput].Prompt = symbol + " "
	m.inputs[amountInput].Placeholder = "300,000"
	m.inputs[termInput].Placeholder = "25"
	m.inputs[rateInput].Placeholder = "5.25"
	m.reset()
	return m
}

// Run starts the terminal UI and blocks until the user quits.
func Run(logger *zap.Logger, symbol string) error {
	p := tea.NewProgram(New(logger, symbol), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			m.submit()
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.calc.Clear()
			m.reset()
			return m, nil
		case key.Matches(msg, m.keys.Next):
			cmd := m.setFocus((m.focus + 1) % focusCount)
			return m, cmd
		case key.Matches(msg, m.keys.Prev):
			cmd := m.setFocus((m.focus + focusCount - 1) % focusCount)
			return m, cmd
		case m.focus == typeSelector && key.Matches(msg, m.keys.Toggle):
			if m.mortgageType == calculator.Repayment {
				m.mortgageType = calculator.InterestOnly
			} else {
				m.mortgageType = calculator.Repayment
			}
			return m, nil
		}
	}

	if m.focus == typeSelector {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) submit() {
	values := map[string]string{
		calculator.FieldAmount:       m.inputs[amountInput].Value(),
		calculator.FieldTerm:         m.inputs[termInput].Value(),
		calculator.FieldInterestRate: m.inputs[rateInput].Value(),
		calculator.FieldMortgageType: string(m.mortgageType),
	}
	// Field errors are kept on the calculator's form and rendered by View.
	_ = m.calc.Submit(calculator.NewFormFromValues(func(name string) string {
		return values[name]
	}))
}

func (m *Model) reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.mortgageType = calculator.Repayment
	m.setFocus(amountInput)
}

func (m *Model) setFocus(index int) tea.Cmd {
	m.focus = index
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == index {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) View() string {
	form := m.calc.Form()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Mortgage Calculator"))
	b.WriteString("\n\n")

	m.writeInput(&b, amountInput, form.Amount, "")
	m.writeInput(&b, termInput, form.Term, " years")
	m.writeInput(&b, rateInput, form.InterestRate, " %")

	b.WriteString(m.label(typeSelector, form.MortgageType.Label))
	b.WriteString("\n")
	for _, mortgageType := range []calculator.MortgageType{calculator.Repayment, calculator.InterestOnly} {
		marker := "( )"
		style := mutedStyle
		if mortgageType == m.mortgageType {
			marker = "(•)"
			style = selectedStyle
		}
		b.WriteString("  " + style.Render(marker+" "+mortgageType.Label()))
	}
	b.WriteString("\n")
	if form.MortgageType.Error != "" {
		b.WriteString(errorStyle.Render(form.MortgageType.Error) + "\n")
	}
	b.WriteString("\n")

	if form.HasErrors() {
		b.WriteString(errorStyle.Render("Check the highlighted fields and try again.") + "\n\n")
	}

	if result, ok := m.calc.Result(); ok {
		card := fmt.Sprintf("%s\n%s\n\n%s\n%s",
			mutedStyle.Render("Your monthly repayments"),
			monthlyStyle.Render(format.FixedCurrency(m.symbol, result.MonthlyPayment)),
			mutedStyle.Render("Total you'll repay over the term"),
			totalStyle.Render(format.FixedCurrency(m.symbol, result.TotalPayment)),
		)
		b.WriteString(titleStyle.Render("Your results") + "\n")
		b.WriteString(resultStyle.Render(card))
	} else {
		b.WriteString(titleStyle.Render("Results shown here") + "\n")
		b.WriteString(mutedStyle.Render("Complete the form and press enter to see your monthly repayments."))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))

	return panelStyle.Render(b.String())
}

func (m Model) label(index int, text string) string {
	if m.focus == index {
		return selectedStyle.Render("> " + text)
	}
	return labelStyle.Render("  " + text)
}

func (m Model) writeInput(b *strings.Builder, index int, field calculator.Field, suffix string) {
	b.WriteString(m.label(index, field.Label))
	b.WriteString("\n  ")
	b.WriteString(m.inputs[index].View())
	b.WriteString(mutedStyle.Render(suffix))
	b.WriteString("\n")
	if field.Error != "" {
		b.WriteString("  " + errorStyle.Render(field.Error) + "\n")
	}
	b.WriteString("\n")
}
