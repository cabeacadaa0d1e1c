package models

import (
	"fmt"
	"strings"
)

type Contact struct {
	BaseModel
	FirstName        string  `json:"first_name" validate:"present" gorm:"not null"`
	LastName         string  `json:"last_name" validate:"present" gorm:"not null"`
	Email            string  `json:"email" validate:"present,email_address" gorm:"not null"`
	Phone            *string `json:"phone"`
	Company          *string `json:"company"`
	Tags             *string `json:"tags"`
	NextFollowUpDate *string `json:"next_follow_up_date" validate:"omitempty,date"`
	Notes            []Note  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// ContactParams are the writable contact fields. A field that was not sent
// is left untouched when applied to an existing contact.
type ContactParams struct {
	FirstName        OptionalString `json:"first_name"`
	LastName         OptionalString `json:"last_name"`
	Email            OptionalString `json:"email"`
	Phone            OptionalString `json:"phone"`
	Company          OptionalString `json:"company"`
	Tags             OptionalString `json:"tags"`
	NextFollowUpDate OptionalString `json:"next_follow_up_date"`
}

// Empty reports whether no field was sent at all.
func (params ContactParams) Empty() bool {
	return !params.FirstName.Set &&
		!params.LastName.Set &&
		!params.Email.Set &&
		!params.Phone.Set &&
		!params.Company.Set &&
		!params.Tags.Set &&
		!params.NextFollowUpDate.Set
}

func (contact *Contact) FullName() string {
	return fmt.Sprintf("%s %s", contact.FirstName, contact.LastName)
}

func (contact *Contact) DisplayName() string {
	if contact.Company != nil && strings.TrimSpace(*contact.Company) != "" {
		return fmt.Sprintf("%s (%s)", contact.FullName(), *contact.Company)
	}
	return contact.FullName()
}

// apply merges params into contact. Required fields sent as null become empty
// and fail validation, optional ones are cleared.
func (params ContactParams) apply(contact *Contact) {
	params.FirstName.applyTo(&contact.FirstName)
	params.LastName.applyTo(&contact.LastName)
	params.Email.applyTo(&contact.Email)
	params.Phone.applyToOptional(&contact.Phone)
	params.Company.applyToOptional(&contact.Company)
	params.Tags.applyToOptional(&contact.Tags)
	params.NextFollowUpDate.applyToOptional(&contact.NextFollowUpDate)

	// A blank date means no follow-up rather than an invalid one
	if contact.NextFollowUpDate != nil && strings.TrimSpace(*contact.NextFollowUpDate) == "" {
		contact.NextFollowUpDate = nil
	}
}
