package model

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "warbler/internal/errors"
)

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

// User represents a Warbler account.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"size:30;not null;uniqueIndex;check:chk_users_username,username <> ''"`
	Email          string    `json:"email" gorm:"size:255;not null;uniqueIndex;check:chk_users_email,email <> ''"`
	Password       string    `json:"-" gorm:"size:255;not null;check:chk_users_password,password <> ''"` // bcrypt hash, never plaintext
	ImageURL       string    `json:"image_url" gorm:"type:text"`
	HeaderImageURL string    `json:"header_image_url" gorm:"type:text"`
	Bio            string    `json:"bio" gorm:"type:text"`
	Location       string    `json:"location" gorm:"size:255"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// String mirrors the debug form used in logs and tests.
func (u *User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}

// SetPassword replaces the stored hash with a bcrypt hash of plain.
func (u *User) SetPassword(plain string, cost int) error {
	if plain == "" {
		return apperrors.ErrEmptyPassword
	}
	if len(plain) > maxPasswordBytes {
		return apperrors.ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword verifies plain against the user's stored hash.
func (u *User) CheckPassword(plain string) (bool, error) {
	return CheckHashedPasswordMatch(u.Password, plain)
}

// CheckHashedPasswordMatch compares a stored bcrypt hash with a plaintext password.
// A mismatch is (false, nil). A stored value that is not a bcrypt hash at all is
// reported as ErrMalformedHash rather than treated as a mismatch.
func CheckHashedPasswordMatch(storedHash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", apperrors.ErrMalformedHash, err)
	}
}
