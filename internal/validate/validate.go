// Package validate collects form validation errors for a single request.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"elca-web/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/go-playground/validator/v10"
)

var (
	engineOnce sync.Once
	engine     *validator.Validate

	authNameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,100}$`)
)

// Engine returns the shared validator configured with the application's
// custom rules. Struct tags use the "validate" key and report field names
// from the "form" tag.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New()
		engine.SetTagName("validate")

		mustRegister("authname", func(fl validator.FieldLevel) bool {
			return authNameRe.MatchString(fl.Field().String())
		})
		mustRegister("password", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})

		engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return engine
}

func mustRegister(tag string, fn validator.Func) {
	if err := engine.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %s: %v", tag, err))
	}
}

// IsStrongPassword requires at least 8 characters with a letter and a digit.
func IsStrongPassword(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

type FieldError struct {
	Field   string
	Message string
}

type Validator struct {
	errs []FieldError
}

func New() *Validator {
	return &Validator{}
}

// Struct validates s and records one error per failing field.
func (v *Validator) Struct(s any) bool {
	err := Engine().Struct(s)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.Add("", err.Error())
		return false
	}
	for _, fe := range verrs {
		v.Add(fe.Field(), message(fe))
	}
	return false
}

// Check records msg for field unless ok holds.
func (v *Validator) Check(ok bool, field, msg string) bool {
	if !ok {
		v.Add(field, msg)
	}
	return ok
}

func (v *Validator) Add(field, msg string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: msg})
}

func (v *Validator) Valid() bool {
	return len(v.errs) == 0
}

func (v *Validator) Errors() []FieldError {
	return v.errs
}

func (v *Validator) HasError(field string) bool {
	for _, e := range v.errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Flash moves all collected messages into the session as error flashes.
func (v *Validator) Flash(s sessions.Session) {
	for _, e := range v.errs {
		session.AddFlash(s, session.FlashError, e.Message)
	}
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return label + " must be a valid e-mail address."
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match.", label)
	case "authname":
		return label + " may only contain letters, digits, dots, dashes and underscores (3-100 characters)."
	case "password":
		return label + " must have at least 8 characters including a letter and a digit."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}

func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return "Value"
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
