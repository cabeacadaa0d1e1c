package tui

import (
	"github.com/Daskott/minicrm/client"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formMode int

const (
	createMode formMode = iota
	editMode
)

var formFields = []struct {
	name        string
	label       string
	placeholder string
}{
	{"first_name", "First name", "Ada"},
	{"last_name", "Last name", "Lovelace"},
	{"email", "Email", "ada@example.com"},
	{"phone", "Phone", ""},
	{"company", "Company", ""},
	{"tags", "Tags", "comma separated"},
	{"next_follow_up_date", "Next follow-up", "YYYY-MM-DD"},
}

// contactForm is the create/edit modal. initial is what the inputs held when
// the form opened. errors holds the field errors of the last rejected submit,
// err any other failure.
type contactForm struct {
	mode      formMode
	contactID uint
	initial   client.ContactInput
	inputs    []textinput.Model
	focus     int
	errors    map[string][]string
	err       error
}

func newContactForm(mode formMode, contact *client.Contact) contactForm {
	values := client.ContactInput{}
	f := contactForm{mode: mode}
	if contact != nil {
		f.contactID = contact.ID
		values = client.InputFrom(*contact)
	}

	initial := []string{
		values.FirstName,
		values.LastName,
		values.Email,
		values.Phone,
		values.Company,
		values.Tags,
		values.NextFollowUpDate,
	}

	f.inputs = make([]textinput.Model, len(formFields))
	for i, field := range formFields {
		input := textinput.New()
		input.Prompt = ""
		input.Placeholder = field.placeholder
		input.Cursor.SetMode(cursor.CursorStatic)
		input.SetValue(initial[i])
		f.inputs[i] = input
	}
	f.inputs[0].Focus()
	f.initial = f.input()

	return f
}

func (f contactForm) title() string {
	if f.mode == editMode {
		return "Edit contact"
	}
	return "New contact"
}

func (f contactForm) input() client.ContactInput {
	return client.ContactInput{
		FirstName:        f.inputs[0].Value(),
		LastName:         f.inputs[1].Value(),
		Email:            f.inputs[2].Value(),
		Phone:            f.inputs[3].Value(),
		Company:          f.inputs[4].Value(),
		Tags:             f.inputs[5].Value(),
		NextFollowUpDate: f.inputs[6].Value(),
	}
}

// changes returns the fields the user edited since the form opened.
func (f contactForm) changes() client.ContactChanges {
	return f.input().Changes(f.initial)
}

func (f *contactForm) moveFocus(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f contactForm) update(msg tea.Msg) (contactForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}
