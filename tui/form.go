package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"salon-admin-cli/planner"
	"salon-admin-cli/store"
)

const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldNotes
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Email", "Phone", "Notes"}

// contactForm collects the customer details for the draft.
type contactForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newContactForm() contactForm {
	var f contactForm
	placeholders := [fieldCount]string{"Jane Citizen", "jane@example.com", "0400 000 000", "optional"}
	limits := [fieldCount]int{80, 120, 32, 500}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.Prompt = ""
		f.inputs[i] = in
	}
	f.inputs[fieldName].Focus()
	return f
}

func (f *contactForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *contactForm) next() tea.Cmd {
	return f.setFocus((f.focus + 1) % fieldCount)
}

func (f *contactForm) prev() tea.Cmd {
	return f.setFocus((f.focus + fieldCount - 1) % fieldCount)
}

func (f *contactForm) focusCmd() tea.Cmd {
	return f.setFocus(f.focus)
}

func (f *contactForm) setFocus(index int) tea.Cmd {
	f.focus = index
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == index {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

func (f contactForm) onLastField() bool {
	return f.focus == fieldCount-1
}

func (f *contactForm) fill(client store.RecentClient) {
	f.inputs[fieldName].SetValue(client.Name)
	f.inputs[fieldEmail].SetValue(client.Email)
	f.inputs[fieldPhone].SetValue(client.Phone)
}

// searchTerm is the first non-blank of name, email and phone.
func (f contactForm) searchTerm() string {
	for _, field := range []int{fieldName, fieldEmail, fieldPhone} {
		if v := strings.TrimSpace(f.inputs[field].Value()); v != "" {
			return v
		}
	}
	return ""
}

func (f *contactForm) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.setFocus(fieldName)
}

func (f *contactForm) setWidth(width int) {
	w := width - 12
	if w < 20 {
		w = 20
	}
	for i := range f.inputs {
		f.inputs[i].Width = w
	}
}

func (f contactForm) contact() planner.Contact {
	return planner.Contact{
		Name:  f.inputs[fieldName].Value(),
		Email: f.inputs[fieldEmail].Value(),
		Phone: f.inputs[fieldPhone].Value(),
		Notes: f.inputs[fieldNotes].Value(),
	}
}

func (f contactForm) view() string {
	label := lipgloss.NewStyle().Width(8)
	active := lipgloss.NewStyle().Width(8).Bold(true).Foreground(lipgloss.Color("63"))
	lines := make([]string, 0, fieldCount+2)
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Client details"), "")
	for i, in := range f.inputs {
		style := label
		if i == f.focus {
			style = active
		}
		lines = append(lines, style.Render(fieldLabels[i])+" "+in.View())
	}
	return strings.Join(lines, "\n")
}
