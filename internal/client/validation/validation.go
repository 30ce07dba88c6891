// Package validation checks form input before anything reaches the network.
//
// It wraps go-playground/validator with the console's own rules:
//
//	receipt     uppercase letters and digits only
//	pastdate    a YYYY-MM-DD date no later than today
//	futuredate  a YYYY-MM-DD date no earlier than today
//	password    6-15 characters with upper, lower, digit and special
//
// Failures are returned as *common.ValidationError keyed by the JSON field
// name. A `label` struct tag overrides the name used in messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/arkadconsole/internal/common"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

var (
	receiptRe = regexp.MustCompile(`^[A-Z0-9]+$`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New returns a Validator using the wall clock for date rules.
func New() *Validator {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	val := &Validator{v: v, now: now}

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("receipt", func(fl validator.FieldLevel) bool {
		return receiptRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("pastdate", func(fl validator.FieldLevel) bool {
		d, ok := val.parseDate(fl.Field().String())
		return ok && !d.After(val.today())
	}))
	must(v.RegisterValidation("futuredate", func(fl validator.FieldLevel) bool {
		d, ok := val.parseDate(fl.Field().String())
		return ok && !d.Before(val.today())
	}))
	must(v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordProblem(fl.Field().String()) == ""
	}))

	return val
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func (v *Validator) today() time.Time {
	n := v.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (v *Validator) parseDate(s string) (time.Time, bool) {
	d, err := time.Parse(DateLayout, s)
	return d, err == nil
}

// Struct validates s and returns nil or a *common.ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &common.ValidationError{Fields: make(map[string]string, len(ve))}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range ve {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe, label(t, fe))
	}
	return out
}

// label prefers the `label` tag of the failing field.
func label(t reflect.Type, fe validator.FieldError) string {
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
		}
	}
	return fe.Field()
}

func message(fe validator.FieldError, name string) string {
	switch fe.Tag() {
	case "required":
		return name + " is required."
	case "receipt":
		return name + " must be uppercase letters and digits only."
	case "pastdate":
		return name + " must be a date no later than today."
	case "futuredate":
		return name + " must be a date no earlier than today."
	case "password":
		return PasswordProblem(fe.Value().(string))
	case "eqfield":
		return "Passwords do not match."
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", name, fe.Param())
	case "email":
		return name + " must be a valid email."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s.", name, fe.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %s.", name, fe.Param())
	case "datetime":
		return name + " must be a date in YYYY-MM-DD form."
	case "numeric":
		return name + " must contain digits only."
	default:
		return fmt.Sprintf("%s is invalid (%s).", name, fe.Tag())
	}
}

// PasswordProblem returns the first unmet password requirement, or "".
func PasswordProblem(p string) string {
	switch n := utf8.RuneCountInString(p); {
	case n < 6 || n > 15:
		return "Password must be 6-15 characters long."
	case !upperRe.MatchString(p):
		return "Password must contain at least one uppercase letter."
	case !lowerRe.MatchString(p):
		return "Password must contain at least one lowercase letter."
	case !digitRe.MatchString(p):
		return "Password must contain at least one number."
	case !specialRe.MatchString(p):
		return "Password must contain at least one special character."
	}
	return ""
}
