package models

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Store is the only write path for contacts and their notes.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks that the underlying db is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ---------------------------------------------------------------------------------//
// Contacts
// --------------------------------------------------------------------------------//

// AllContacts returns every contact in insertion order.
func (s *Store) AllContacts(ctx context.Context) ([]Contact, error) {
	contacts := []Contact{}

	err := s.db.WithContext(ctx).Scopes(insertionOrder).Find(&contacts).Error
	if err != nil {
		return nil, errors.Wrap(err, "list contacts")
	}

	return contacts, nil
}

func (s *Store) FindContact(ctx context.Context, id uint) (*Contact, error) {
	return findContact(s.db.WithContext(ctx), id)
}

// CreateContact validates params as a new contact and persists it.
func (s *Store) CreateContact(ctx context.Context, params ContactParams) (*Contact, error) {
	contact := &Contact{}
	params.apply(contact)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if verr := validateContact(tx, contact); verr != nil {
			return verr
		}

		return translateWriteError(tx.Create(contact).Error)
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// UpdateContact merges params into the stored contact, re-validates the
// result and persists it. Nothing is written when validation fails.
func (s *Store) UpdateContact(ctx context.Context, id uint, params ContactParams) (*Contact, error) {
	var contact *Contact

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		contact, err = findContact(tx, id)
		if err != nil {
			return err
		}

		params.apply(contact)
		if verr := validateContact(tx, contact); verr != nil {
			return verr
		}

		contact.UpdatedAt = tx.NowFunc()
		return translateWriteError(tx.Save(contact).Error)
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// DeleteContact removes the contact's notes and then the contact itself.
func (s *Store) DeleteContact(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contact, err := findContact(tx, id)
		if err != nil {
			return err
		}

		err = tx.Where("contact_id = ?", contact.ID).Delete(&Note{}).Error
		if err != nil {
			return errors.Wrapf(err, "delete notes of contact %v", contact.ID)
		}

		res := tx.Delete(&Contact{}, contact.ID)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "delete contact %v", contact.ID)
		}

		if res.RowsAffected == 0 {
			return &NotFoundError{Model: "Contact", ID: id}
		}

		return nil
	})
}

// EmailTaken reports whether a contact other than exceptID uses email,
// compared case-insensitively.
func (s *Store) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return emailTaken(s.db.WithContext(ctx), email, exceptID)
}

// ---------------------------------------------------------------------------------//
// Notes
// --------------------------------------------------------------------------------//

// ContactNotes returns the contact's notes, pinned ones first, newest first.
func (s *Store) ContactNotes(ctx context.Context, contactID uint) ([]Note, error) {
	db := s.db.WithContext(ctx)

	_, err := findContact(db, contactID)
	if err != nil {
		return nil, err
	}

	pinnedNotes := []Note{}
	err = db.Scopes(pinned, recent).Where("contact_id = ?", contactID).Find(&pinnedNotes).Error
	if err != nil {
		return nil, errors.Wrap(err, "list pinned notes")
	}

	unpinnedNotes := []Note{}
	err = db.Scopes(unpinned, recent).Where("contact_id = ?", contactID).Find(&unpinnedNotes).Error
	if err != nil {
		return nil, errors.Wrap(err, "list unpinned notes")
	}

	return append(pinnedNotes, unpinnedNotes...), nil
}

func (s *Store) FindNote(ctx context.Context, contactID, noteID uint) (*Note, error) {
	return findNote(s.db.WithContext(ctx), contactID, noteID)
}

func (s *Store) CreateNote(ctx context.Context, contactID uint, params NoteParams) (*Note, error) {
	note := &Note{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contact, err := findContact(tx, contactID)
		if err != nil {
			return err
		}
		note.ContactID = contact.ID

		if verr := validateNote(note, params); verr != nil {
			return verr
		}

		return errors.Wrap(tx.Create(note).Error, "create note")
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

func (s *Store) UpdateNote(ctx context.Context, contactID, noteID uint, params NoteParams) (*Note, error) {
	var note *Note

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		note, err = findNote(tx, contactID, noteID)
		if err != nil {
			return err
		}

		if verr := validateNote(note, params); verr != nil {
			return verr
		}

		note.UpdatedAt = tx.NowFunc()
		return errors.Wrap(tx.Save(note).Error, "update note")
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

// ToggleNotePin flips the pinned flag of a note.
func (s *Store) ToggleNotePin(ctx context.Context, contactID, noteID uint) (*Note, error) {
	var note *Note

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		note, err = findNote(tx, contactID, noteID)
		if err != nil {
			return err
		}

		note.Pinned = !note.Pinned
		note.UpdatedAt = tx.NowFunc()
		return errors.Wrap(tx.Save(note).Error, "toggle note pin")
	})
	if err != nil {
		return nil, err
	}

	return note, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func findContact(db *gorm.DB, id uint) (*Contact, error) {
	contact := Contact{}

	err := db.First(&contact, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Model: "Contact", ID: id}
	}

	if err != nil {
		return nil, errors.Wrapf(err, "find contact %v", id)
	}

	return &contact, nil
}

func findNote(db *gorm.DB, contactID, noteID uint) (*Note, error) {
	_, err := findContact(db, contactID)
	if err != nil {
		return nil, err
	}

	note := Note{}
	err = db.Where("contact_id = ?", contactID).First(&note, noteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Model: "Note", ID: noteID}
	}

	if err != nil {
		return nil, errors.Wrapf(err, "find note %v", noteID)
	}

	return &note, nil
}

// validateContact runs field validation and, when an email was given,
// the uniqueness check. A blank email is reported as both blank and invalid. It returns nil when contact can be written.
func validateContact(db *gorm.DB, contact *Contact) error {
	verr := &ValidationError{}
	verr.merge(Validate(contact))

	// The format check stops at the blank email, but it still fails
	if strings.TrimSpace(contact.Email) == "" {
		verr.Add("email", MsgInvalid)
	} else {
		taken, err := emailTaken(db, contact.Email, contact.ID)
		if err != nil {
			return err
		}

		if taken {
			verr.Add("email", MsgTaken)
		}
	}

	if verr.Empty() {
		return nil
	}

	return verr
}

func validateNote(note *Note, params NoteParams) error {
	verr := &ValidationError{}
	verr.merge(params.apply(note))
	verr.merge(Validate(note))

	if verr.Empty() {
		return nil
	}

	return verr
}

func emailTaken(db *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64

	err := db.Model(&Contact{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, exceptID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check email uniqueness")
	}

	return count > 0, nil
}

// translateWriteError reports a violation of the email index the same way as
// the uniqueness check, for writes that raced past it.
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		verr := &ValidationError{}
		verr.Add("email", MsgTaken)
		return verr
	}

	return errors.Wrap(err, "save contact")
}
