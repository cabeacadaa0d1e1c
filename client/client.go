package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// Contact as returned by the api.
type Contact struct {
	ID               uint      `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Phone            *string   `json:"phone"`
	Company          *string   `json:"company"`
	Tags             *string   `json:"tags"`
	NextFollowUpDate *string   `json:"next_follow_up_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (c Contact) FullName() string {
	return fmt.Sprintf("%s %s", c.FirstName, c.LastName)
}

func (c Contact) DisplayName() string {
	if c.Company != nil && strings.TrimSpace(*c.Company) != "" {
		return fmt.Sprintf("%s (%s)", c.FullName(), *c.Company)
	}
	return c.FullName()
}

type Note struct {
	ID        uint      `json:"id"`
	ContactID uint      `json:"contact_id"`
	Content   string    `json:"content"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactInput holds every writable field of a contact as entered in a form.
// Blank optional fields are sent as null.
type ContactInput struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Company          string
	Tags             string
	NextFollowUpDate string
}

// InputFrom returns the input that would leave contact unchanged.
func InputFrom(contact Contact) ContactInput {
	return ContactInput{
		FirstName:        contact.FirstName,
		LastName:         contact.LastName,
		Email:            contact.Email,
		Phone:            valueOf(contact.Phone),
		Company:          valueOf(contact.Company),
		Tags:             valueOf(contact.Tags),
		NextFollowUpDate: valueOf(contact.NextFollowUpDate),
	}
}

func (in ContactInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(ContactChanges(in.fields()))
}

// Changes returns the fields of in whose value differs from before.
func (in ContactInput) Changes(before ContactInput) ContactChanges {
	changes := ContactChanges{}
	previous := before.fields()

	for name, value := range in.fields() {
		if value != previous[name] {
			changes[name] = value
		}
	}

	return changes
}

func (in ContactInput) fields() map[string]string {
	return map[string]string{
		"first_name":          in.FirstName,
		"last_name":           in.LastName,
		"email":               in.Email,
		"phone":               in.Phone,
		"company":             in.Company,
		"tags":                in.Tags,
		"next_follow_up_date": in.NextFollowUpDate,
	}
}

// ContactChanges are the contact fields to update, keyed by their json name.
// Fields that are left out keep their stored value.
type ContactChanges map[string]string

// optionalFields are cleared by sending null
var optionalFields = map[string]bool{
	"phone":               true,
	"company":             true,
	"tags":                true,
	"next_follow_up_date": true,
}

func (changes ContactChanges) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{}, len(changes))
	for name, value := range changes {
		if optionalFields[name] {
			body[name] = nullIfBlank(value)
		} else {
			body[name] = value
		}
	}
	return json.Marshal(body)
}

// Client talks to the contacts api mounted at baseURL, e.g.
// http://localhost:3000/api/v1
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Contacts(ctx context.Context) ([]Contact, error) {
	contacts := []Contact{}
	err := c.do(ctx, http.MethodGet, "/contacts", nil, &contacts)
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (c *Client) Contact(ctx context.Context, id uint) (*Contact, error) {
	contact := &Contact{}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/contacts/%d", id), nil, contact)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (c *Client) CreateContact(ctx context.Context, input ContactInput) (*Contact, error) {
	contact := &Contact{}
	body := map[string]interface{}{"contact": input}

	err := c.do(ctx, http.MethodPost, "/contacts", body, contact)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// UpdateContact sends only changes, so fields the caller did not touch are
// never overwritten.
func (c *Client) UpdateContact(ctx context.Context, id uint, changes ContactChanges) (*Contact, error) {
	contact := &Contact{}
	body := map[string]interface{}{"contact": changes}

	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/contacts/%d", id), body, contact)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (c *Client) DeleteContact(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/contacts/%d", id), nil, nil)
}

func (c *Client) Notes(ctx context.Context, contactID uint) ([]Note, error) {
	notes := []Note{}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/contacts/%d/notes", contactID), nil, &notes)
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, contactID uint, content string) (*Note, error) {
	note := &Note{}
	body := map[string]interface{}{"note": map[string]string{"content": content}}

	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/contacts/%d/notes", contactID), body, note)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (c *Client) ToggleNotePin(ctx context.Context, contactID, noteID uint) (*Note, error) {
	note := &Note{}
	path := fmt.Sprintf("/contacts/%d/notes/%d/toggle_pin", contactID, noteID)

	err := c.do(ctx, http.MethodPost, path, nil, note)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// do sends a JSON request and decodes a 2xx response into out. Failures are
// returned as *TransportError, *ValidationError, ErrNotFound or *ServerError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Err: errors.Wrap(err, "decode response")}
	}

	return nil
}

func responseError(resp *http.Response) error {
	payload := struct {
		Errors map[string][]string `json:"errors"`
	}{}
	// The body is informational only; a missing or odd one still maps by status
	json.NewDecoder(resp.Body).Decode(&payload)

	switch resp.StatusCode {
	case http.StatusNotFound:
		if messages := payload.Errors["base"]; len(messages) > 0 {
			return errors.WithMessage(ErrNotFound, messages[0])
		}
		return ErrNotFound
	case http.StatusUnprocessableEntity:
		if len(payload.Errors) > 0 {
			return &ValidationError{Errors: payload.Errors}
		}
	}

	return &ServerError{StatusCode: resp.StatusCode, Errors: payload.Errors}
}

func nullIfBlank(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func valueOf(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
