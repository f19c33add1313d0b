package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var sqlIdentifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("sql_identifier", validateSQLIdentifier)
}

// validateSQLIdentifier accepts plain, unquoted SQL identifiers only.
func validateSQLIdentifier(fl validator.FieldLevel) bool {
	return sqlIdentifierPattern.MatchString(fl.Field().String())
}
