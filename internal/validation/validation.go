// Package validation evaluates per-field form rules and turns failures into
// user-facing messages.
//
// Rules live in `validate` struct tags; messages live in a per-locale table
// keyed by "field.rule" or, as a fallback, by "rule".
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// UsernamePattern is the shape every username must have.
var UsernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)

// FieldErrors maps a form field name to the first message it failed with.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (e FieldErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Validator runs struct-tag rules and resolves their messages.
type Validator struct {
	validate *validator.Validate
	messages Messages
}

// New creates a Validator that reports messages in the given locale.
// Unknown locales fall back to English.
func New(locale string) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return UsernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validation: failed to register username rule: %v", err))
	}
	return &Validator{
		validate: v,
		messages: MessagesFor(locale),
	}
}

// Struct validates s and returns one message per failing field, or nil.
func (v *Validator) Struct(s interface{}) FieldErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"form": err.Error()}
	}
	errs := FieldErrors{}
	for _, e := range validationErrors {
		errs.Add(e.Field(), v.message(e.Field(), e.Tag(), e.Param()))
	}
	return errs
}

// Message returns the message registered under key, formatted with args.
func (v *Validator) Message(key string, args ...interface{}) string {
	tmpl, ok := v.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

func (v *Validator) message(field, tag, param string) string {
	if tmpl, ok := v.messages[field+"."+tag]; ok {
		return tmpl
	}
	if tmpl, ok := v.messages[tag]; ok {
		if strings.Contains(tmpl, "%s") {
			return fmt.Sprintf(tmpl, param)
		}
		return tmpl
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", field, tag)
}
