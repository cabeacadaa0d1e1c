package models

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	db, err := InitializeTestDb()
	require.Nil(t, err)

	return NewStore(db)
}

func adaParams() ContactParams {
	return ContactParams{
		FirstName: NewOptionalString("Ada"),
		LastName:  NewOptionalString("Lovelace"),
		Email:     NewOptionalString("ada@example.com"),
	}
}

func validationErrors(t *testing.T, err error) map[string][]string {
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
	return verr.Errors
}

func TestCreateContact(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contact, err := store.CreateContact(ctx, adaParams())
	require.Nil(t, err)

	assert.NotZero(t, contact.ID, "Should assign an id")
	assert.False(t, contact.CreatedAt.IsZero())
	assert.False(t, contact.UpdatedAt.IsZero())
	assert.Nil(t, contact.Phone)
	assert.Nil(t, contact.NextFollowUpDate)

	contacts, err := store.AllContacts(ctx)
	require.Nil(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, contact.ID, contacts[0].ID)
	assert.Equal(t, "ada@example.com", contacts[0].Email)
}

func TestCreateContactValidations(t *testing.T) {
	testCases := []struct {
		description    string
		params         ContactParams
		expectedErrors map[string][]string
	}{
		{
			description: "Should require first_name, last_name and email",
			params:      ContactParams{},
			expectedErrors: map[string][]string{
				"first_name": {MsgBlank},
				"last_name":  {MsgBlank},
				"email":      {MsgBlank, MsgInvalid},
			},
		},
		{
			description: "Should treat whitespace as blank",
			params: ContactParams{
				FirstName: NewOptionalString("   "),
				LastName:  NewOptionalString("Lovelace"),
				Email:     NewOptionalString("ada@example.com"),
			},
			expectedErrors: map[string][]string{"first_name": {MsgBlank}},
		},
		{
			description: "Should reject a malformed email",
			params: ContactParams{
				FirstName: NewOptionalString("Ada"),
				LastName:  NewOptionalString("Lovelace"),
				Email:     NewOptionalString("not-an-email"),
			},
			expectedErrors: map[string][]string{"email": {MsgInvalid}},
		},
		{
			description: "Should reject an invalid follow up date",
			params: ContactParams{
				FirstName:        NewOptionalString("Ada"),
				LastName:         NewOptionalString("Lovelace"),
				Email:            NewOptionalString("ada@example.com"),
				NextFollowUpDate: NewOptionalString("2024-13-40"),
			},
			expectedErrors: map[string][]string{"next_follow_up_date": {MsgInvalidDate}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			store := newTestStore(t)

			contact, err := store.CreateContact(context.Background(), tc.params)
			assert.Nil(t, contact)
			assert.Equal(t, tc.expectedErrors, validationErrors(t, err))

			contacts, err := store.AllContacts(context.Background())
			require.Nil(t, err)
			assert.Empty(t, contacts, "Should not persist an invalid contact")
		})
	}
}

func TestCreateContactWithDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateContact(ctx, adaParams())
	require.Nil(t, err)

	duplicate := adaParams()
	duplicate.FirstName = NewOptionalString("Augusta")
	duplicate.Email = NewOptionalString("ADA@Example.COM")

	contact, err := store.CreateContact(ctx, duplicate)
	assert.Nil(t, contact)
	assert.Equal(t, map[string][]string{"email": {MsgTaken}}, validationErrors(t, err))

	contacts, err := store.AllContacts(ctx)
	require.Nil(t, err)
	assert.Len(t, contacts, 1)
}

func TestEmailIndexRejectsCaseInsensitiveDuplicates(t *testing.T) {
	db, err := InitializeTestDb()
	require.Nil(t, err)

	err = db.Create(&Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}).Error
	require.Nil(t, err)

	// Bypasses the store's own check, so only the index can catch it
	err = db.Create(&Contact{FirstName: "Ada", LastName: "King", Email: "Ada@Example.com"}).Error
	require.NotNil(t, err)

	assert.Equal(t, map[string][]string{"email": {MsgTaken}}, validationErrors(t, translateWriteError(err)))
}

func TestUpdateContact(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clock := time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)
	store.db.Config.NowFunc = func() time.Time { return clock }

	ada, err := store.CreateContact(ctx, adaParams())
	require.Nil(t, err)

	clock = clock.Add(time.Minute)

	updated, err := store.UpdateContact(ctx, ada.ID, ContactParams{
		Company: NewOptionalString("Analytical Engines"),
	})
	require.Nil(t, err)

	require.NotNil(t, updated.Company)
	assert.Equal(t, "Analytical Engines", *updated.Company)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Equal(t, "ada@example.com", updated.Email)
	assert.True(t, updated.UpdatedAt.After(ada.UpdatedAt), "Should bump updated_at")
	assert.True(t, updated.CreatedAt.Equal(ada.CreatedAt), "Should keep created_at")

	stored, err := store.FindContact(ctx, ada.ID)
	require.Nil(t, err)
	require.NotNil(t, stored.Company)
	assert.Equal(t, "Analytical Engines", *stored.Company)
}

func TestUpdateContactEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ada, err := store.CreateContact(ctx, adaParams())
	require.Nil(t, err)

	charles, err := store.CreateContact(ctx, ContactParams{
		FirstName: NewOptionalString("Charles"),
		LastName:  NewOptionalString("Babbage"),
		Email:     NewOptionalString("charles@example.com"),
	})
	require.Nil(t, err)

	_, err = store.UpdateContact(ctx, ada.ID, ContactParams{Email: NewOptionalString("ADA@example.com")})
	assert.Nil(t, err, "Should allow a contact to keep its own email")

	_, err = store.UpdateContact(ctx, charles.ID, ContactParams{
		Email:    NewOptionalString("Ada@Example.com"),
		LastName: NewOptionalString("Changed"),
	})
	assert.Equal(t, map[string][]string{"email": {MsgTaken}}, validationErrors(t, err))

	stored, err := store.FindContact(ctx, charles.ID)
	require.Nil(t, err)
	assert.Equal(t, "charles@example.com", stored.Email, "Should not mutate a contact on failed update")
	assert.Equal(t, "Babbage", stored.LastName)
}

func TestUpdateContactClearsOptionalFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	params := adaParams()
	params.Phone = NewOptionalString("+44 20 7946 0000")
	params.NextFollowUpDate = NewOptionalString("2025-10-01")

	ada, err := store.CreateContact(ctx, params)
	require.Nil(t, err)
	require.NotNil(t, ada.NextFollowUpDate)
	assert.Equal(t, "2025-10-01", *ada.NextFollowUpDate)

	updated, err := store.UpdateContact(ctx, ada.ID, ContactParams{
		Phone:            OptionalString{Set: true, Null: true},
		NextFollowUpDate: NewOptionalString(""),
	})
	require.Nil(t, err)
	assert.Nil(t, updated.Phone)
	assert.Nil(t, updated.NextFollowUpDate)
}

func TestUpdateContactRequiredFieldSentAsNull(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ada, err := store.CreateContact(ctx, adaParams())
	require.Nil(t, err)

	_, err = store.UpdateContact(ctx, ada.ID, ContactParams{FirstName: OptionalString{Set: true, Null: true}})
	assert.Equal(t, map[string][]string{"first_name": {MsgBlank}}, validationErrors(t, err))
}

func TestUpdateMissingContact(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateContact(context.Background(), 42, adaParams())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindContactNotFound(t *testing.T) {
	store := newTestStore(t)

	contact, err := store.FindContact(context.Background(), 42)
	assert.Nil(t, contact)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Couldn't find Contact with 'id'=42", err.Error())
}

func TestDeleteContactCascadesToNotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ada, err := store.CreateContact(ctx, adaParams())
	require.Nil(t, err)

	note, err := store.CreateNote(ctx, ada.ID, NoteParams{Content: NewOptionalString("Met at the Royal Society")})
	require.Nil(t, err)

	_, err = store.CreateNote(ctx, ada.ID, NoteParams{Content: NewOptionalString("Follow up on the engine")})
	require.Nil(t, err)

	err = store.DeleteContact(ctx, ada.ID)
	require.Nil(t, err)

	_, err = store.FindNote(ctx, ada.ID, note.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	var remaining int64
	err = store.db.Model(&Note{}).Where("contact_id = ?", ada.ID).Count(&remaining).Error
	require.Nil(t, err)
	assert.Zero(t, remaining, "Should remove all notes of the contact")

	err = store.DeleteContact(ctx, ada.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "Should not find an already deleted contact")
}

func TestAllContactsInInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	names := []string{"Grace", "Alan", "Edsger"}
	for _, name := range names {
		_, err := store.CreateContact(ctx, ContactParams{
			FirstName: NewOptionalString(name),
			LastName:  NewOptionalString("Pioneer"),
			Email:     NewOptionalString(strings.ToLower(name) + "@example.com"),
		})
		require.Nil(t, err)
	}

	contacts, err := store.AllContacts(ctx)
	require.Nil(t, err)

	actual := []string{}
	for _, contact := range contacts {
		actual = append(actual, contact.FirstName)
	}
	assert.Equal(t, names, actual)
}

func TestNotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clock := time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)
	store.db.Config.NowFunc = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	ada, err := store.CreateContact(ctx, adaParams())
	require.Nil(t, err)

	first, err := store.CreateNote(ctx, ada.ID, NoteParams{Content: NewOptionalString("first")})
	require.Nil(t, err)
	assert.False(t, first.Pinned, "Should default pinned to false")
	assert.Equal(t, ada.ID, first.ContactID)

	second, err := store.CreateNote(ctx, ada.ID, NoteParams{Content: NewOptionalString("second")})
	require.Nil(t, err)

	third, err := store.CreateNote(ctx, ada.ID, NoteParams{Content: NewOptionalString("third")})
	require.Nil(t, err)

	toggled, err := store.ToggleNotePin(ctx, ada.ID, first.ID)
	require.Nil(t, err)
	assert.True(t, toggled.Pinned)

	notes, err := store.ContactNotes(ctx, ada.ID)
	require.Nil(t, err)

	ids := []uint{}
	for _, note := range notes {
		ids = append(ids, note.ID)
	}
	assert.Equal(t, []uint{first.ID, third.ID, second.ID}, ids, "Should list pinned notes first, then newest")

	updated, err := store.UpdateNote(ctx, ada.ID, second.ID, NoteParams{Content: NewOptionalString("second, revised")})
	require.Nil(t, err)
	assert.Equal(t, "second, revised", updated.Content)
	assert.False(t, updated.Pinned)
}

func TestNoteValidations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ada, err := store.CreateContact(ctx, adaParams())
	require.Nil(t, err)

	_, err = store.CreateNote(ctx, ada.ID, NoteParams{})
	assert.Equal(t, map[string][]string{"content": {MsgBlank}}, validationErrors(t, err))

	_, err = store.CreateNote(ctx, ada.ID, NoteParams{Content: NewOptionalString(strings.Repeat("a", 10001))})
	assert.Equal(t,
		map[string][]string{"content": {"is too long (maximum is 10000 characters)"}},
		validationErrors(t, err),
	)

	_, err = store.CreateNote(ctx, ada.ID, NoteParams{
		Content: NewOptionalString(strings.Repeat("é", 10000)),
	})
	assert.Nil(t, err, "Should count characters, not bytes")

	_, err = store.CreateNote(ctx, ada.ID, NoteParams{
		Content: NewOptionalString("ok"),
		Pinned:  OptionalBool{Set: true, Null: true},
	})
	assert.Equal(t, map[string][]string{"pinned": {MsgNotIncluded}}, validationErrors(t, err))

	_, err = store.CreateNote(ctx, ada.ID+1, NoteParams{Content: NewOptionalString("orphan")})
	assert.True(t, errors.Is(err, ErrNotFound), "Should not create a note without its contact")
}

func TestFindNoteOfAnotherContact(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ada, err := store.CreateContact(ctx, adaParams())
	require.Nil(t, err)

	charles, err := store.CreateContact(ctx, ContactParams{
		FirstName: NewOptionalString("Charles"),
		LastName:  NewOptionalString("Babbage"),
		Email:     NewOptionalString("charles@example.com"),
	})
	require.Nil(t, err)

	note, err := store.CreateNote(ctx, ada.ID, NoteParams{Content: NewOptionalString("private")})
	require.Nil(t, err)

	_, err = store.FindNote(ctx, charles.ID, note.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
