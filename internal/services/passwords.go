package services

import (
	"errors"
	"fmt"

	"blog/internal/models"
	"blog/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword bcrypts a form password. Passwords bcrypt cannot take (over
// 72 bytes, which multi-byte input reaches before 72 characters) come back
// as a field error on "password".
func hashPassword(v *validation.Validator, password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", models.NewFieldErrors(validation.FieldErrors{
				"password": v.Message(validation.KeyPasswordTooLong),
			})
		}
		return "", models.NewInternalError(fmt.Errorf("failed to hash password: %w", err))
	}
	return string(hashed), nil
}
