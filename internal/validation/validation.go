package validation

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidateRequired valida que un campo no esté vacío
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMaxLength valida la longitud máxima de un string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return errors.New(fieldName + " must be at most " + strconv.Itoa(maxLength) + " characters long")
	}
	return nil
}

// ValidateID checks a backend identifier. Ids are database serials, so they start at 1
func ValidateID(id int64, fieldName string) error {
	if id <= 0 {
		return errors.New(fieldName + " must be a positive integer")
	}
	return nil
}

// ValidateIDs runs ValidateID over name/value pairs and returns the first failure
func ValidateIDs(pairs ...any) error {
	if len(pairs)%2 != 0 {
		return errors.New("validation: odd number of arguments")
	}
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return errors.New("validation: field name must be a string")
		}
		id, ok := pairs[i+1].(int64)
		if !ok {
			return errors.New(name + " must be an int64")
		}
		if err := ValidateID(id, name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEventTitle valida el título usado en la exportación por título
func ValidateEventTitle(title string) error {
	if err := ValidateRequired(title, "event title"); err != nil {
		return err
	}
	return ValidateMaxLength(title, 255, "event title")
}
