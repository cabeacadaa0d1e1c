package client

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is matched by every 404 returned by the api.
var ErrNotFound = errors.New("record not found")

// TransportError means the api could not be reached or its response could not
// be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("could not reach the minicrm server: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError carries the field errors of a 422 response.
type ValidationError struct {
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.FullMessages(), ", ")
}

// FullMessages returns "Field message" strings sorted by field.
func (e *ValidationError) FullMessages() []string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := []string{}
	for _, field := range fields {
		for _, msg := range e.Errors[field] {
			if field == "base" {
				messages = append(messages, msg)
				continue
			}
			messages = append(messages, fmt.Sprintf("%s %s", humanize(field), msg))
		}
	}
	return messages
}

// ServerError is any other non-2xx response.
type ServerError struct {
	StatusCode int
	Errors     map[string][]string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("API Error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func humanize(field string) string {
	words := strings.ReplaceAll(field, "_", " ")
	if words == "" {
		return words
	}
	return strings.ToUpper(words[:1]) + words[1:]
}
