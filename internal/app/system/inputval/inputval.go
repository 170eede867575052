// Package inputval validates caller-supplied fields before they reach the
// repositories. Struct validation uses go-playground/validator with a few
// domain rules registered on top:
//
//	clock    24-hour HH:MM (00-23, 00-59)
//	isodate  calendar date YYYY-MM-DD
//	userid   non-empty, no '.' or '$' (ids become map keys in the store)
//	nonblank not empty after trimming; pair with omitnil on patch pointers
//
// Field names in messages come from the `label` tag.
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			return IsValidClock(fl.Field().String())
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			return IsValidDate(fl.Field().String())
		})
		_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
			return IsValidUserID(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects validation failures.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Validate checks s (a struct or pointer to struct) against its tags.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required", "nonblank":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "clock":
		return label + " must be a 24-hour time (HH:MM)."
	case "isodate":
		return label + " must be a date (YYYY-MM-DD)."
	case "userid":
		return label + " is not a valid user id."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s).", label, fe.Param())
	default:
		return label + " is invalid."
	}
}

// IsValidClock reports whether s is a 24-hour time "HH:MM" with
// 00 <= HH <= 23 and 00 <= MM <= 59. Exactly two digits each.
func IsValidClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	return hh <= 23 && mm <= 59
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsValidUserID reports whether id can be used as a member or participant
// key.
func IsValidUserID(id string) bool {
	if strings.TrimSpace(id) == "" || id != strings.TrimSpace(id) {
		return false
	}
	return !strings.ContainsAny(id, ".$")
}
