package service

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"warbler/internal/errors"
)

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

// CredentialValidator checks signup input before anything is hashed or stored.
type CredentialValidator struct {
	validate *validator.Validate
}

// NewCredentialValidator creates a new credential validator.
func NewCredentialValidator() *CredentialValidator {
	return &CredentialValidator{validate: validator.New()}
}

// ValidatePassword rejects missing passwords and ones bcrypt cannot hash.
func (v *CredentialValidator) ValidatePassword(password string) error {
	if password == "" {
		return errors.ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return errors.ErrPasswordTooLong
	}
	return nil
}

// ValidateImageURL accepts an empty value, a site-relative path or an
// absolute http(s) URL.
func (v *CredentialValidator) ValidateImageURL(raw string) error {
	if raw == "" {
		return nil
	}
	if strings.IndexFunc(raw, func(r rune) bool { return unicode.IsControl(r) || unicode.IsSpace(r) }) >= 0 {
		return errors.ErrInvalidImageURL
	}

	// Site-relative path, e.g. /static/images/default-pic.png
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return errors.ErrInvalidImageURL
		}
		return nil
	}

	if err := v.validate.Var(raw, "http_url"); err != nil {
		return errors.ErrInvalidImageURL
	}
	return nil
}

// ValidateSignup validates the synchronous parts of a signup request.
// Username and email uniqueness and presence are left to the store.
func (v *CredentialValidator) ValidateSignup(in SignupInput) error {
	if err := v.ValidatePassword(in.Password); err != nil {
		return err
	}
	return v.ValidateImageURL(in.ImageURL)
}
