package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Daskott/minicrm/client"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	labelStyle    = lipgloss.NewStyle().Width(16)
	modalStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)
)

func (m Model) View() string {
	b := strings.Builder{}
	b.WriteString(titleStyle.Render("Contacts"))
	b.WriteString("\n")

	switch m.state {
	case stateLoading:
		fmt.Fprintf(&b, "%s Loading contacts...\n", m.spinner.View())

	case stateErrored:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("r reload • q quit"))
		b.WriteString("\n")

	case stateLoaded:
		b.WriteString(m.listView())
		b.WriteString("\n")
		b.WriteString(m.help.View(listKeys{}))
		b.WriteString("\n")

	case stateModalOpen:
		b.WriteString(m.formView())
		b.WriteString("\n")
		b.WriteString(m.help.View(formKeys{}))
		b.WriteString("\n")

	case stateConfirmDelete:
		prompt := fmt.Sprintf("Delete %s? (y/n)", m.deleting.DisplayName())
		b.WriteString(modalStyle.Render(prompt))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) listView() string {
	b := strings.Builder{}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	if len(m.contacts) == 0 {
		b.WriteString(dimStyle.Render("No contacts yet. Press n to add one."))
		b.WriteString("\n")
		return b.String()
	}

	for i, contact := range m.contacts {
		line := fmt.Sprintf("%s  %s", contact.DisplayName(), dimStyle.Render(contactDetails(contact)))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + contact.DisplayName()))
			b.WriteString("  " + dimStyle.Render(contactDetails(contact)))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) formView() string {
	f := m.form
	b := strings.Builder{}
	b.WriteString(titleStyle.Render(f.title()))
	b.WriteString("\n")

	for i, field := range formFields {
		label := labelStyle.Render(field.label)
		if i == f.focus {
			label = selectedStyle.Inherit(labelStyle).Render(field.label)
		}
		fmt.Fprintf(&b, "%s %s\n", label, f.inputs[i].View())

		if messages := f.errors[field.name]; len(messages) > 0 {
			b.WriteString(errorStyle.Render(fmt.Sprintf("%s %s", field.label, strings.Join(messages, ", "))))
			b.WriteString("\n")
		}
	}

	for _, msg := range otherErrors(f.errors) {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}

	if f.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", f.err)))
		b.WriteString("\n")
	}

	if m.busy {
		fmt.Fprintf(&b, "%s Saving...\n", m.spinner.View())
	}

	return modalStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

func contactDetails(contact client.Contact) string {
	details := []string{contact.Email}
	if contact.Phone != nil && *contact.Phone != "" {
		details = append(details, *contact.Phone)
	}
	if contact.NextFollowUpDate != nil {
		details = append(details, "follow up "+*contact.NextFollowUpDate)
	}
	return strings.Join(details, " · ")
}

// otherErrors returns the messages of fields the form has no input for.
func otherErrors(errs map[string][]string) []string {
	known := map[string]bool{}
	for _, field := range formFields {
		known[field.name] = true
	}

	messages := []string{}
	for field, fieldMessages := range errs {
		if known[field] {
			continue
		}
		messages = append(messages, (&client.ValidationError{
			Errors: map[string][]string{field: fieldMessages},
		}).FullMessages()...)
	}
	sort.Strings(messages)

	return messages
}
