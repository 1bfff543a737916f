// Package inputval validates decoded request payloads with go-playground/validator.
//
// Field names in failures are the json tag names. Extra tags:
//
//	strongpwd  at least 8 characters with one uppercase letter, one digit and one of @$!%*?&,
//	           drawn only from letters, digits and those symbols
//	objectid   a 24-character hex Mongo ObjectID
package inputval

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PasswordSymbols are the special characters a strong password may contain.
const PasswordSymbols = "@$!%*?&"

// Messages used where the client expects a specific wording.
const (
	MsgInvalidEmail = "Invalid email format"
	MsgWeakPassword = "Password must be at least 8 characters long, include one uppercase letter, one number, and one special character"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("pwdcharset", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if !isPasswordRune(r) {
				return false
			}
		}
		return true
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	v.RegisterAlias("strongpwd", "min=8,containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ,containsany=0123456789,containsany="+PasswordSymbols+",pwdcharset")
	return v
}

func isPasswordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	default:
		return strings.ContainsRune(PasswordSymbols, r)
	}
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	return validate.Struct(s)
}

// IsValidEmail reports whether s is a syntactically valid address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && validate.Var(s, "email") == nil
}

// IsStrongPassword reports whether s satisfies the strongpwd rule.
func IsStrongPassword(s string) bool {
	return validate.Var(s, "strongpwd") == nil
}

// Message turns a validation error into one client-facing sentence,
// describing the first failing field.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		if err == nil {
			return ""
		}
		return "invalid payload"
	}
	return fieldMessage(verrs[0])
}

// Details maps every failing field to its message.
func Details(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return MsgInvalidEmail
	case "strongpwd", "pwdcharset":
		return MsgWeakPassword
	case "objectid":
		return fe.Field() + " must be a valid id"
	case "oneof":
		return fe.Field() + " must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters long"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters long"
	default:
		return fe.Field() + " is invalid"
	}
}
