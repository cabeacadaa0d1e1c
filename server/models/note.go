package models

type Note struct {
	BaseModel
	Content   string `json:"content" validate:"present,max=10000" gorm:"type:text;not null"`
	Pinned    bool   `json:"pinned" gorm:"not null;default:false"`
	ContactID uint   `json:"contact_id" gorm:"not null;index"`
}

type NoteParams struct {
	Content OptionalString `json:"content"`
	Pinned  OptionalBool   `json:"pinned"`
}

// apply merges params into note and reports field errors that cannot be
// represented on the model itself, i.e. an explicit null for pinned.
func (params NoteParams) apply(note *Note) *ValidationError {
	params.Content.applyTo(&note.Content)

	if !params.Pinned.Set {
		return nil
	}

	if params.Pinned.Null {
		verr := &ValidationError{}
		verr.Add("pinned", MsgNotIncluded)
		return verr
	}

	note.Pinned = params.Pinned.Value
	return nil
}
