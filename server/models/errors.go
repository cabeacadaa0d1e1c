package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	MsgBlank       = "can't be blank"
	MsgInvalid     = "is invalid"
	MsgTaken       = "has already been taken"
	MsgInvalidDate = "is not a valid date"
	MsgNotIncluded = "is not included in the list"
)

var ErrNotFound = errors.New("record not found")

// NotFoundError reports a missing record. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Model string
	ID    interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Couldn't find %s with 'id'=%v", e.Model, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError maps field names to the messages of every constraint the
// field violates.
type ValidationError struct {
	Errors map[string][]string
}

func (e *ValidationError) Add(field, message string) {
	if e.Errors == nil {
		e.Errors = make(map[string][]string)
	}

	for _, existing := range e.Errors[field] {
		if existing == message {
			return
		}
	}
	e.Errors[field] = append(e.Errors[field], message)
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Errors) == 0
}

// merge adds all messages from other into e.
func (e *ValidationError) merge(other *ValidationError) {
	if other.Empty() {
		return
	}

	for field, messages := range other.Errors {
		for _, message := range messages {
			e.Add(field, message)
		}
	}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := []string{}
	for _, field := range fields {
		for _, message := range e.Errors[field] {
			messages = append(messages, fmt.Sprintf("%s %s", humanize(field), message))
		}
	}

	return "Validation failed: " + strings.Join(messages, ", ")
}

// humanize turns "first_name" into "First name"
func humanize(field string) string {
	words := strings.ReplaceAll(field, "_", " ")
	if words == "" {
		return words
	}
	return strings.ToUpper(words[:1]) + words[1:]
}
