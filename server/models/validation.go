package models

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

const DateLayout = "2006-01-02"

// emailRegexp is the mail address pattern of RFC 5322 as commonly used by
// web frameworks: a dot-atom local part and a hostname of dns labels.
var emailRegexp = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?" +
		`(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`,
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their json names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := RegisterValidators(validate)
	if err != nil {
		panic(err)
	}
}

// RegisterValidators adds the custom tags used by the models to validate.
func RegisterValidators(validate *validator.Validate) error {
	err := validate.RegisterValidation("present", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("email_address", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	if err != nil {
		return err
	}

	return validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		return IsValidDate(fl.Field().String())
	})
}

func IsValidEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

func IsValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

// Validate checks record against its validate tags and returns nil or a
// *ValidationError keyed by json field name.
func Validate(record interface{}) *ValidationError {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	verr := &ValidationError{}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.Add("base", err.Error())
		return verr
	}

	for _, fieldErr := range fieldErrors {
		verr.Add(fieldErr.Field(), messageFor(fieldErr))
	}

	return verr
}

func messageFor(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "present", "required":
		return MsgBlank
	case "date":
		return MsgInvalidDate
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fieldErr.Param())
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", fieldErr.Param())
	default:
		return MsgInvalid
	}
}
