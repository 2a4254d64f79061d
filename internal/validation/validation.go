// Package validation checks bound request structs with go-playground/validator
// and produces Indonesian, per-field error messages.
package validation

import (
	"errors"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	idtranslations "github.com/go-playground/validator/v10/translations/id"
	"github.com/jimdaga/kamus/internal/apperr"
)

// Messages overrides the default translation for a "field.tag" pair,
// e.g. "word.required" -> "Kata wajib diisi".
type Messages map[string]string

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form name so messages line up with the submitted form
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	indonesian := id.New()
	uni := ut.New(indonesian, indonesian)
	var found bool
	trans, found = uni.GetTranslator("id")
	if !found {
		log.Fatal("validation: indonesian translator not found")
	}
	if err := idtranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		log.Fatalf("validation: register translations: %v", err)
	}
}

// Fields validates v and returns the per-field messages, or nil when v is valid.
func Fields(v interface{}, messages Messages) apperr.FieldErrors {
	fields, _ := collect(v, messages)
	return fields
}

// Check validates v and returns an apperr validation error, or nil.
// The error's message is the first failing field in struct order.
func Check(v interface{}, messages Messages) error {
	fields, first := collect(v, messages)
	if fields == nil {
		return nil
	}
	return apperr.Invalid(first, fields)
}

func collect(v interface{}, messages Messages) (apperr.FieldErrors, string) {
	err := validate.Struct(v)
	if err == nil {
		return nil, ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Programming error: v is not a struct
		return apperr.FieldErrors{"": err.Error()}, err.Error()
	}

	fields := make(apperr.FieldErrors, len(verrs))
	var first string
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		msg, ok := messages[name+"."+fe.Tag()]
		if !ok {
			msg = fe.Translate(trans)
		}
		fields[name] = msg
		if first == "" {
			first = msg
		}
	}
	return fields, first
}
