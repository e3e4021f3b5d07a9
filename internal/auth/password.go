package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultMinPasswordLength applies when no minimum is configured.
const DefaultMinPasswordLength = 12

// bcrypt ignores input past 72 bytes
const maxPasswordBytes = 72

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length of 72 bytes")
)

// PasswordTooShortError carries the configured minimum so that the
// registration form can tell the learner what is required.
type PasswordTooShortError struct {
	Min int
}

func (e *PasswordTooShortError) Error() string {
	return fmt.Sprintf("password must be at least %d characters", e.Min)
}

func (e *PasswordTooShortError) Is(target error) bool {
	return target == ErrPasswordTooShort
}

// PasswordPolicy decides which learner passwords are accepted and how they
// are stored.
type PasswordPolicy struct {
	MinLength int
	Cost      int
}

func (p PasswordPolicy) minLength() int {
	if p.MinLength <= 0 {
		return DefaultMinPasswordLength
	}
	return p.MinLength
}

// Validate checks the length limits. Length counts characters, not bytes,
// except for the bcrypt byte ceiling.
func (p PasswordPolicy) Validate(password string) error {
	if n := len([]rune(password)); n < p.minLength() {
		return &PasswordTooShortError{Min: p.minLength()}
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// Hash validates password and returns its bcrypt hash.
func (p PasswordPolicy) Hash(password string) (string, error) {
	if err := p.Validate(password); err != nil {
		return "", err
	}

	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return err
	}
	return nil
}

// GenerateSessionSecret creates a random 32-byte secret for CSRF signing.
func GenerateSessionSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
