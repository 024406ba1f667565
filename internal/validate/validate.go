// Package validate is the "mandatory companion" allowlist validator
// §9 names: "the source ships an allowlist-based validator for type
// names, ids, field names, action types, and search queries. Treat it
// as a mandatory companion; the core assumes validated input." It
// wraps github.com/go-playground/validator/v10, the teacher's own
// choice (backend's internal/config/config.go registers a custom
// "aws_region" tag the same way this package registers typename/
// entityid/fieldname/verbbase), used at the façade's public boundary
// only — every other package in this module, the in-memory provider
// included, assumes its input already passed through here.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "graphfacade/errors"
)

var v = validator.New()

// typeNamePattern allows an exported-Go-identifier-shaped type name:
// starts with an uppercase letter, then letters/digits.
var typeNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

// fieldNamePattern allows a camelCase field/verb name.
var fieldNamePattern = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)

// entityIDPattern rejects ids containing path separators or the
// reserved "$" prefix that marks a Flat's reserved keys, since an id
// doubles as part of the provider's storage key.
var entityIDPattern = regexp.MustCompile(`^[^$/\\\s]+$`)

func init() {
	mustRegister("typename", func(fl validator.FieldLevel) bool {
		return typeNamePattern.MatchString(fl.Field().String())
	})
	mustRegister("entityid", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && entityIDPattern.MatchString(s)
	})
	mustRegister("fieldname", func(fl validator.FieldLevel) bool {
		return fieldNamePattern.MatchString(fl.Field().String())
	})
	mustRegister("verbbase", func(fl validator.FieldLevel) bool {
		return fieldNamePattern.MatchString(fl.Field().String())
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: failed to register %q: %v", tag, err))
	}
}

// Struct validates s against its `validate:"..."` tags, translating
// any failure into a typed apperrors.AppError rather than validator's
// own error type.
func Struct(s any) error {
	if err := v.Struct(s); err != nil {
		return translate(err)
	}
	return nil
}

// Var validates a single value against an inline tag, e.g.
// Var(name, "required,typename").
func Var(value any, tag string) error {
	if err := v.Var(value, tag); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewInputError(err.Error())
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperrors.NewInputError(strings.Join(parts, "; "))
}

// TypeName validates an entity-type name against the typename rule
// directly (for callers, like facade.Database, that validate a bare
// string rather than a tagged struct).
func TypeName(name string) error {
	if err := Var(name, "required,typename"); err != nil {
		return apperrors.NewInputError("invalid type name").WithType(name)
	}
	return nil
}

// EntityID validates an id directly.
func EntityID(id string) error {
	if err := Var(id, "required,entityid"); err != nil {
		return apperrors.NewInputError("invalid entity id").WithID(id)
	}
	return nil
}

// FieldName validates a field name directly.
func FieldName(name string) error {
	if err := Var(name, "required,fieldname"); err != nil {
		return apperrors.NewInputError("invalid field name").WithAction(name)
	}
	return nil
}

// VerbBase validates an action's base verb directly.
func VerbBase(base string) error {
	if err := Var(base, "required,verbbase"); err != nil {
		return apperrors.NewInputError("invalid action verb").WithAction(base)
	}
	return nil
}
