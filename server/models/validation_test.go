package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	testCases := []struct {
		email    string
		expected bool
	}{
		{"ada@example.com", true},
		{"ada.lovelace+crm@mail.example.co.uk", true},
		{"o'brien@example.com", true},
		{"ada@localhost", true},
		{"", false},
		{"ada", false},
		{"ada@", false},
		{"@example.com", false},
		{"ada lovelace@example.com", false},
		{"ada@-example.com", false},
		{"ada@example..com", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, IsValidEmail(tc.email), "IsValidEmail(%q)", tc.email)
	}
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2025-02-28"))
	assert.False(t, IsValidDate("2025-02-30"))
	assert.False(t, IsValidDate("28/02/2025"))
	assert.False(t, IsValidDate("2025-02-28T10:00:00Z"))
}

func TestValidationErrorMessage(t *testing.T) {
	verr := &ValidationError{}
	verr.Add("last_name", MsgBlank)
	verr.Add("email", MsgTaken)
	verr.Add("email", MsgTaken)

	assert.Equal(t, []string{MsgTaken}, verr.Errors["email"], "Should not repeat a message")
	assert.Equal(t, "Validation failed: Email has already been taken, Last name can't be blank", verr.Error())
}

func TestContactParamsUnmarshal(t *testing.T) {
	params := ContactParams{}
	err := json.Unmarshal([]byte(`{"first_name":"Ada","phone":null}`), &params)
	require.Nil(t, err)

	assert.Equal(t, NewOptionalString("Ada"), params.FirstName)
	assert.Equal(t, OptionalString{Set: true, Null: true}, params.Phone)
	assert.False(t, params.Email.Set, "Should leave absent fields unset")

	err = json.Unmarshal([]byte(`{"first_name":42}`), &ContactParams{})
	assert.NotNil(t, err, "Should reject non-string values")
}

func TestNoteParamsUnmarshal(t *testing.T) {
	params := NoteParams{}
	err := json.Unmarshal([]byte(`{"content":"hello","pinned":true}`), &params)
	require.Nil(t, err)

	assert.Equal(t, NewOptionalString("hello"), params.Content)
	assert.Equal(t, NewOptionalBool(true), params.Pinned)

	err = json.Unmarshal([]byte(`{"pinned":"yes"}`), &NoteParams{})
	assert.NotNil(t, err)
}

func TestDisplayName(t *testing.T) {
	company := "Analytical Engines"
	contact := Contact{FirstName: "Ada", LastName: "Lovelace"}

	assert.Equal(t, "Ada Lovelace", contact.DisplayName())

	contact.Company = &company
	assert.Equal(t, "Ada Lovelace (Analytical Engines)", contact.DisplayName())
}
