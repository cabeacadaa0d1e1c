// Package tui is the terminal front-end of the contact list. The model owns
// its copy of the contacts and replaces it wholesale after every successful
// mutation.
package tui

import (
	"context"

	"github.com/Daskott/minicrm/client"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

// ContactAPI is the part of the api client the view drives.
type ContactAPI interface {
	Contacts(ctx context.Context) ([]client.Contact, error)
	CreateContact(ctx context.Context, input client.ContactInput) (*client.Contact, error)
	UpdateContact(ctx context.Context, id uint, changes client.ContactChanges) (*client.Contact, error)
	DeleteContact(ctx context.Context, id uint) error
}

type viewState int

const (
	stateLoading viewState = iota
	stateLoaded
	stateErrored
	stateModalOpen
	stateConfirmDelete
)

func (s viewState) String() string {
	return [...]string{"loading", "loaded", "errored", "modal", "confirm-delete"}[s]
}

type contactsLoadedMsg struct{ contacts []client.Contact }

type loadFailedMsg struct{ err error }

type contactSavedMsg struct{ contact *client.Contact }

type saveFailedMsg struct{ err error }

type contactDeletedMsg struct{}

type deleteFailedMsg struct{ err error }

type Model struct {
	api      ContactAPI
	state    viewState
	contacts []client.Contact
	cursor   int

	// err is the load error while errored, or the last failed delete
	err error

	// busy is set while a mutation is in flight; input is ignored meanwhile
	busy bool

	form     contactForm
	deleting *client.Contact
	spinner  spinner.Model
	help     help.Model
	width    int
}

func New(api ContactAPI) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		api:     api,
		state:   stateLoading,
		spinner: s,
		help:    help.New(),
	}
}

// Run shows the contact list until the user quits.
func Run(api ContactAPI) error {
	_, err := tea.NewProgram(New(api), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadContacts())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.state != stateLoading && !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case contactsLoadedMsg:
		m.contacts = msg.contacts
		m.state = stateLoaded
		m.busy = false
		m.clampCursor()
		return m, nil

	case loadFailedMsg:
		m.state = stateErrored
		m.busy = false
		m.err = msg.err
		return m, nil

	case contactSavedMsg:
		m.busy = false
		m.form = contactForm{}
		return m, m.reload()

	case saveFailedMsg:
		m.busy = false
		var verr *client.ValidationError
		if errors.As(msg.err, &verr) {
			m.form.errors = verr.Errors
			m.form.err = nil
		} else {
			m.form.errors = nil
			m.form.err = msg.err
		}
		return m, nil

	case contactDeletedMsg:
		m.busy = false
		m.deleting = nil
		return m, m.reload()

	case deleteFailedMsg:
		m.busy = false
		m.deleting = nil
		m.state = stateLoaded
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}

	if m.state == stateModalOpen {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateLoading:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}

	case stateErrored:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Reload):
			return m, m.reload()
		}

	case stateLoaded:
		return m.handleListKey(msg)

	case stateModalOpen:
		return m.handleFormKey(msg)

	case stateConfirmDelete:
		switch {
		case key.Matches(msg, keys.Confirm):
			contact := m.deleting
			m.state = stateLoading
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.deleteContact(contact.ID))
		case key.Matches(msg, keys.Cancel), msg.String() == "n":
			m.deleting = nil
			m.state = stateLoaded
		}
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.contacts)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Reload):
		return m, m.reload()

	case key.Matches(msg, keys.New):
		m.err = nil
		m.form = newContactForm(createMode, nil)
		m.state = stateModalOpen

	case key.Matches(msg, keys.Edit):
		if contact := m.selected(); contact != nil {
			m.err = nil
			m.form = newContactForm(editMode, contact)
			m.state = stateModalOpen
		}

	case key.Matches(msg, keys.Delete):
		if contact := m.selected(); contact != nil {
			m.err = nil
			m.deleting = contact
			m.state = stateConfirmDelete
		}
	}

	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.form = contactForm{}
		m.state = stateLoaded
		return m, nil

	case key.Matches(msg, keys.Submit):
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, m.saveContact(m.form))

	case key.Matches(msg, keys.Next):
		m.form.moveFocus(1)
		return m, nil

	case key.Matches(msg, keys.Prev):
		m.form.moveFocus(-1)
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

// reload replaces the contact list with a fresh copy from the api.
func (m *Model) reload() tea.Cmd {
	m.state = stateLoading
	m.err = nil
	return tea.Batch(m.spinner.Tick, m.loadContacts())
}

func (m Model) selected() *client.Contact {
	if m.cursor < 0 || m.cursor >= len(m.contacts) {
		return nil
	}
	contact := m.contacts[m.cursor]
	return &contact
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.contacts) {
		m.cursor = len(m.contacts) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// ---------------------------------------------------------------------------------//
// Commands
// --------------------------------------------------------------------------------//

func (m Model) loadContacts() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		contacts, err := api.Contacts(context.Background())
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return contactsLoadedMsg{contacts: contacts}
	}
}

// saveContact creates the contact, or in edit mode sends only the edited
// fields. An edit without changes is saved without calling the api.
func (m Model) saveContact(form contactForm) tea.Cmd {
	api := m.api
	input := form.input()
	changes := form.changes()
	return func() tea.Msg {
		var contact *client.Contact
		var err error

		switch {
		case form.mode == editMode && len(changes) == 0:
			return contactSavedMsg{}
		case form.mode == editMode:
			contact, err = api.UpdateContact(context.Background(), form.contactID, changes)
		default:
			contact, err = api.CreateContact(context.Background(), input)
		}

		if err != nil {
			return saveFailedMsg{err: err}
		}
		return contactSavedMsg{contact: contact}
	}
}

func (m Model) deleteContact(id uint) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		if err := api.DeleteContact(context.Background(), id); err != nil {
			return deleteFailedMsg{err: err}
		}
		return contactDeletedMsg{}
	}
}
