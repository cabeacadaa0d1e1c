package server

import (
	"net/http"

	"github.com/Daskott/minicrm/server/models"
	"github.com/Daskott/minicrm/shared"
	"github.com/gorilla/mux"
)

const APIPrefix = "/api/v1"

// NewRouter wires every api route onto store. Request ids, access logs and
// CORS wrap the whole router so unmatched routes and preflights get them too.
func NewRouter(store *models.Store, config *shared.ServerConfig) http.Handler {
	h := &handlers{store: store}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	router.Use(initialContextMiddleware(config.Crm.MaxRequestBodySize))

	router.HandleFunc("/health", h.health).Methods("GET")

	api := router.PathPrefix(APIPrefix).Subrouter()
	api.NotFoundHandler = router.NotFoundHandler
	api.MethodNotAllowedHandler = router.MethodNotAllowedHandler

	// Contacts
	api.HandleFunc("/contacts", h.listContacts).Methods("GET")
	api.HandleFunc("/contacts", h.createContact).Methods("POST")
	api.HandleFunc("/contacts/{id:[0-9]+}", h.showContact).Methods("GET")
	api.HandleFunc("/contacts/{id:[0-9]+}", h.updateContact).Methods("PATCH", "PUT")
	api.HandleFunc("/contacts/{id:[0-9]+}", h.deleteContact).Methods("DELETE")

	// Notes
	api.HandleFunc("/contacts/{id:[0-9]+}/notes", h.listNotes).Methods("GET")
	api.HandleFunc("/contacts/{id:[0-9]+}/notes", h.createNote).Methods("POST")
	api.HandleFunc("/contacts/{id:[0-9]+}/notes/{note_id:[0-9]+}", h.showNote).Methods("GET")
	api.HandleFunc("/contacts/{id:[0-9]+}/notes/{note_id:[0-9]+}", h.updateNote).Methods("PATCH", "PUT")
	api.HandleFunc("/contacts/{id:[0-9]+}/notes/{note_id:[0-9]+}/toggle_pin", h.toggleNotePin).Methods("POST")

	var handler http.Handler = router
	handler = corsMiddleware(config.Crm.Cors.AllowedOrigins)(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return handler
}
