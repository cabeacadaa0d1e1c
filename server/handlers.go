package server

import (
	"net/http"

	"github.com/Daskott/minicrm/server/models"
)

// ErrorPayload is the body of every non-2xx response. Field errors are keyed
// by field name, everything else by "base".
type ErrorPayload struct {
	Errors map[string][]string `json:"errors"`
}

type contactRequest struct {
	Contact *models.ContactParams `json:"contact"`
}

type noteRequest struct {
	Note *models.NoteParams `json:"note"`
}

type handlers struct {
	store *models.Store
}

// ---------------------------------------------------------------------------------//
// Contacts
// --------------------------------------------------------------------------------//

// GET /api/v1/contacts
func (h *handlers) listContacts(rw http.ResponseWriter, r *http.Request) {
	contacts, err := h.store.AllContacts(r.Context())
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, contacts, http.StatusOK)
}

// GET /api/v1/contacts/{id}
func (h *handlers) showContact(rw http.ResponseWriter, r *http.Request) {
	id, ok := pathID(rw, r, "id")
	if !ok {
		return
	}

	contact, err := h.store.FindContact(r.Context(), id)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, contact, http.StatusOK)
}

// POST /api/v1/contacts
func (h *handlers) createContact(rw http.ResponseWriter, r *http.Request) {
	req := contactRequest{}
	if !decodeRequest(rw, r, &req) {
		return
	}

	if req.Contact == nil {
		writeResponse(rw, fieldErrors("contact", msgMissing), http.StatusBadRequest)
		return
	}

	contact, err := h.store.CreateContact(r.Context(), *req.Contact)
	if err != nil {
		writeError(rw, err)
		return
	}

	logg.Infof("Created contact with id=%v", contact.ID)
	writeResponse(rw, contact, http.StatusCreated)
}

// PATCH/PUT /api/v1/contacts/{id}
func (h *handlers) updateContact(rw http.ResponseWriter, r *http.Request) {
	id, ok := pathID(rw, r, "id")
	if !ok {
		return
	}

	req := contactRequest{}
	if !decodeRequest(rw, r, &req) {
		return
	}

	if req.Contact == nil || req.Contact.Empty() {
		writeResponse(rw, fieldErrors("contact", msgMissing), http.StatusBadRequest)
		return
	}

	contact, err := h.store.UpdateContact(r.Context(), id, *req.Contact)
	if err != nil {
		writeError(rw, err)
		return
	}

	logg.Infof("Updated contact with id=%v", contact.ID)
	writeResponse(rw, contact, http.StatusOK)
}

// DELETE /api/v1/contacts/{id}
func (h *handlers) deleteContact(rw http.ResponseWriter, r *http.Request) {
	id, ok := pathID(rw, r, "id")
	if !ok {
		return
	}

	err := h.store.DeleteContact(r.Context(), id)
	if err != nil {
		writeError(rw, err)
		return
	}

	logg.Infof("Deleted contact with id=%v", id)
	rw.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------------//
// Notes
// --------------------------------------------------------------------------------//

// GET /api/v1/contacts/{id}/notes
func (h *handlers) listNotes(rw http.ResponseWriter, r *http.Request) {
	contactID, ok := pathID(rw, r, "id")
	if !ok {
		return
	}

	notes, err := h.store.ContactNotes(r.Context(), contactID)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, notes, http.StatusOK)
}

// GET /api/v1/contacts/{id}/notes/{note_id}
func (h *handlers) showNote(rw http.ResponseWriter, r *http.Request) {
	contactID, noteID, ok := notePathIDs(rw, r)
	if !ok {
		return
	}

	note, err := h.store.FindNote(r.Context(), contactID, noteID)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, note, http.StatusOK)
}

// POST /api/v1/contacts/{id}/notes
func (h *handlers) createNote(rw http.ResponseWriter, r *http.Request) {
	contactID, ok := pathID(rw, r, "id")
	if !ok {
		return
	}

	req := noteRequest{}
	if !decodeRequest(rw, r, &req) {
		return
	}

	if req.Note == nil {
		writeResponse(rw, fieldErrors("note", msgMissing), http.StatusBadRequest)
		return
	}

	note, err := h.store.CreateNote(r.Context(), contactID, *req.Note)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, note, http.StatusCreated)
}

// PATCH /api/v1/contacts/{id}/notes/{note_id}
func (h *handlers) updateNote(rw http.ResponseWriter, r *http.Request) {
	contactID, noteID, ok := notePathIDs(rw, r)
	if !ok {
		return
	}

	req := noteRequest{}
	if !decodeRequest(rw, r, &req) {
		return
	}

	if req.Note == nil || (!req.Note.Content.Set && !req.Note.Pinned.Set) {
		writeResponse(rw, fieldErrors("note", msgMissing), http.StatusBadRequest)
		return
	}

	note, err := h.store.UpdateNote(r.Context(), contactID, noteID, *req.Note)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, note, http.StatusOK)
}

// POST /api/v1/contacts/{id}/notes/{note_id}/toggle_pin
func (h *handlers) toggleNotePin(rw http.ResponseWriter, r *http.Request) {
	contactID, noteID, ok := notePathIDs(rw, r)
	if !ok {
		return
	}

	note, err := h.store.ToggleNotePin(r.Context(), contactID, noteID)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, note, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Misc
// --------------------------------------------------------------------------------//

// GET /health
func (h *handlers) health(rw http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logg.Errorf("health check failed: %v", err)
		writeResponse(rw, map[string]string{"status": "unavailable"}, http.StatusServiceUnavailable)
		return
	}

	writeResponse(rw, map[string]string{"status": "ok"}, http.StatusOK)
}

func notFound(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, fieldErrors("base", "resource not found"), http.StatusNotFound)
}

func methodNotAllowed(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, fieldErrors("base", "method not allowed"), http.StatusMethodNotAllowed)
}
