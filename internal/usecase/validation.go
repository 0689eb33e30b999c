package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

const (
	maxNameLength    = 200
	maxMessageLength = 2000
)

var nonDigits = regexp.MustCompile(`\D`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	errors = append(errors, validateName(input.Name)...)
	errors = append(errors, validateContact(input.Email, input.Phone)...)

	if utf8.RuneCountInString(input.Message) > maxMessageLength {
		errors = append(errors, ValidationError{"message", fmt.Sprintf("must not exceed %d characters", maxMessageLength)})
	}

	return errors
}

func ValidateLeadPatch(patch entity.LeadPatch) []ValidationError {
	var errors []ValidationError

	if patch.IsEmpty() {
		return []ValidationError{{"body", "no fields to update"}}
	}
	if patch.Name != nil {
		errors = append(errors, validateName(*patch.Name)...)
	}

	var email, phone string
	if patch.Email != nil {
		email = *patch.Email
	}
	if patch.Phone != nil {
		phone = *patch.Phone
	}
	errors = append(errors, validateContact(email, phone)...)

	if patch.Message != nil && utf8.RuneCountInString(*patch.Message) > maxMessageLength {
		errors = append(errors, ValidationError{"message", fmt.Sprintf("must not exceed %d characters", maxMessageLength)})
	}
	if patch.StatusID != nil && strings.TrimSpace(*patch.StatusID) == "" {
		errors = append(errors, ValidationError{"status_id", "must not be empty"})
	}

	return errors
}

func validateName(name string) []ValidationError {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return []ValidationError{{"name", "is required"}}
	case utf8.RuneCountInString(name) < 2:
		return []ValidationError{{"name", "must have at least 2 characters"}}
	case utf8.RuneCountInString(name) > maxNameLength:
		return []ValidationError{{"name", fmt.Sprintf("must not exceed %d characters", maxNameLength)}}
	}
	return nil
}

// email e telefone são opcionais, mas se vierem precisam ser válidos
func validateContact(email, phone string) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(email) != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}
	if strings.TrimSpace(phone) != "" && !isValidPhoneNumber(phone) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}

	return errors
}

// aceita DDD + número (10/11 dígitos) com ou sem DDI 55
func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	return len(cleaned) >= 10 && len(cleaned) <= 13
}
